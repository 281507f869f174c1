package info

import (
	"regexp"
	"strings"

	"github.com/MOYARU/apiprobe/internal/checks"
	ctxpkg "github.com/MOYARU/apiprobe/internal/checks/context"
	"github.com/MOYARU/apiprobe/internal/jsonutil"
	"github.com/MOYARU/apiprobe/internal/report"
)

type leakagePattern struct {
	Kind  string
	Regex *regexp.Regexp
}

func keyValuePattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + name + `"?\s*[:=]\s*"?[^"\s,}]+`)
}

// Order matters: details list matched kinds in this order.
var leakagePatterns = []leakagePattern{
	{Kind: "email", Regex: regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)},
	{Kind: "credit card", Regex: regexp.MustCompile(`\b(?:\d[ -]?){12,15}\d\b`)},
	{Kind: "password", Regex: keyValuePattern("password")},
	{Kind: "secret", Regex: keyValuePattern("secret")},
	{Kind: "token", Regex: keyValuePattern("token")},
	{Kind: "key", Regex: keyValuePattern("key")},
	{Kind: "ssn", Regex: regexp.MustCompile(`\b\d{3}-?\d{2}-?\d{4}\b`)},
}

// CheckSensitiveData scans the response body for credential and personal
// data signatures.
func CheckSensitiveData(ctx *ctxpkg.Context) (report.Finding, error) {
	resp, err := ctx.Do(ctx.Request())
	if err != nil {
		return report.Finding{}, err
	}
	if err := ctxpkg.Unreachable(resp); err != nil {
		return report.Finding{}, err
	}

	matched := ScanText(bodyText(resp.Data))
	if len(matched) == 0 {
		return checks.NewFinding(report.StatusPassed, "", "SENSITIVE_DATA_NONE"), nil
	}

	lines := make([]string, 0, len(matched))
	for _, kind := range matched {
		lines = append(lines, "Found possible "+kind+" data in response")
	}
	f := checks.NewFinding(report.StatusFailed, report.SeverityHigh, "SENSITIVE_DATA_FOUND")
	f.Details = strings.Join(lines, "\n")
	return f, nil
}

// ScanText returns the kinds whose pattern occurs in text, each at most once.
func ScanText(text string) []string {
	var matched []string
	for _, p := range leakagePatterns {
		if p.Regex.MatchString(text) {
			matched = append(matched, p.Kind)
		}
	}
	return matched
}

// bodyText renders decoded data as text. Plain-text bodies are scanned as
// received; structured bodies are scanned in their JSON form.
func bodyText(data any) string {
	data = report.Sanitize(data)
	if s, ok := data.(string); ok {
		return s
	}
	b, err := jsonutil.Marshal(data)
	if err != nil {
		return ""
	}
	return string(b)
}
