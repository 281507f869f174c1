package headers

import (
	"strings"

	"github.com/MOYARU/apiprobe/internal/checks"
	ctxpkg "github.com/MOYARU/apiprobe/internal/checks/context"
	"github.com/MOYARU/apiprobe/internal/report"
)

// Missing headers are reported in this order.
var headersToCheck = []string{
	"Strict-Transport-Security",
	"Content-Security-Policy",
	"X-Content-Type-Options",
	"X-Frame-Options",
	"X-XSS-Protection",
}

func CheckSecurityHeaders(ctx *ctxpkg.Context) (report.Finding, error) {
	resp, err := ctx.Do(ctx.Request())
	if err != nil {
		return report.Finding{}, err
	}
	if err := ctxpkg.Unreachable(resp); err != nil {
		return report.Finding{}, err
	}

	var missing []string
	for _, name := range headersToCheck {
		if strings.TrimSpace(resp.Header.Get(name)) == "" {
			missing = append(missing, name)
		}
	}

	var f report.Finding
	switch {
	case len(missing) == 0:
		return checks.NewFinding(report.StatusPassed, "", "SECURITY_HEADERS_PRESENT"), nil
	case len(missing) <= 2:
		f = checks.NewFinding(report.StatusWarning, report.SeverityMedium, "SECURITY_HEADERS_SOME_MISSING")
	default:
		f = checks.NewFinding(report.StatusFailed, report.SeverityHigh, "SECURITY_HEADERS_MANY_MISSING")
	}
	f.Details = "Missing headers: " + strings.Join(missing, ", ")
	return f, nil
}
