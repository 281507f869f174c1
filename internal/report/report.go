package report

import (
	"time"

	"github.com/MOYARU/apiprobe/internal/endpoint"
)

type Status string
type Severity string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusWarning Status = "warning"

	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities for comparison; an absent severity ranks 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Finding is the classified outcome of one probe run. Severity is empty for
// passed findings and for outcomes where no risk is asserted.
type Finding struct {
	Name        string   `json:"name"`
	Status      Status   `json:"status"`
	Description string   `json:"description"`
	Details     string   `json:"details,omitempty"`
	Severity    Severity `json:"severity,omitempty"`
}

// ProbeStat records the outgoing traffic of one probe.
type ProbeStat struct {
	Requests   int64 `json:"requests"`
	DurationMs int64 `json:"durationMs"`
}

// ScanReport is assembled once per scan and not modified afterwards.
type ScanReport struct {
	ID             string               `json:"id"`
	Endpoint       endpoint.Spec        `json:"endpoint"`
	Timestamp      time.Time            `json:"timestamp"`
	Findings       []Finding            `json:"findings"`
	RawResponse    any                  `json:"rawResponse,omitempty"`
	ResponseTimeMs *int64               `json:"responseTimeMs,omitempty"`
	StatusCode     *int                 `json:"statusCode,omitempty"`
	ProbeStats     map[string]ProbeStat `json:"probeStats,omitempty"`
}

type Summary struct {
	Passed  int      `json:"passed"`
	Failed  int      `json:"failed"`
	Warning int      `json:"warning"`
	Highest Severity `json:"highest,omitempty"`
}

// Summarize counts findings by status and reports the highest severity seen.
func (r *ScanReport) Summarize() Summary {
	var s Summary
	for _, f := range r.Findings {
		switch f.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusWarning:
			s.Warning++
		}
		if f.Severity.Rank() > s.Highest.Rank() {
			s.Highest = f.Severity
		}
	}
	return s
}
