package checks

import (
	"fmt"

	context "github.com/MOYARU/apiprobe/internal/checks/context"
	msges "github.com/MOYARU/apiprobe/internal/messages"
	"github.com/MOYARU/apiprobe/internal/report"
)

type Category string

const (
	CategoryAuthSession        Category = "CAT_AUTH_SESSION"
	CategoryInformationLeakage Category = "CAT_INFO_LEAKAGE"
	CategoryNetwork            Category = "CAT_NETWORK"
	CategorySecurityHeaders    Category = "CAT_SECURITY_HEADERS"
	CategoryAPISecurity        Category = "CAT_API_SECURITY"
)

// Check describes one probe. Run produces exactly one finding; a returned
// error is turned into a warning carrying ErrorSeverity by the scanner.
type Check struct {
	ID            string
	Name          string
	Description   string
	Category      Category
	ErrorSeverity report.Severity
	Run           func(*context.Context) (report.Finding, error)
}

// Info is the part of a Check exposed to callers enumerating probes.
type Info struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
}

func (c Check) Info() Info {
	return Info{ID: c.ID, Name: c.Name, Description: c.Description, Category: c.Category}
}

// NewFinding builds a finding whose description comes from the message
// catalog. args fill the message's format verbs, if any.
func NewFinding(status report.Status, severity report.Severity, messageID string, args ...any) report.Finding {
	description := msges.GetMessage(messageID).Message
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return report.Finding{
		Status:      status,
		Description: description,
		Severity:    severity,
	}
}
