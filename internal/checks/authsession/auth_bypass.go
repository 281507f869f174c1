package authsession

import (
	"fmt"
	"net/http"

	"github.com/MOYARU/apiprobe/internal/checks"
	ctxpkg "github.com/MOYARU/apiprobe/internal/checks/context"
	"github.com/MOYARU/apiprobe/internal/report"
)

// credentialHeaders are stripped before the request is replayed.
var credentialHeaders = []string{"Authorization", "X-Api-Key", "Api-Key"}

// CheckAuthBypass replays the request without credentials and classifies
// how the endpoint answers.
func CheckAuthBypass(ctx *ctxpkg.Context) (report.Finding, error) {
	req := ctx.Request()
	req.Headers = ctx.Endpoint.Headers.Without(credentialHeaders...)

	resp, err := ctx.Do(req)
	if err != nil {
		return report.Finding{}, err
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		f := checks.NewFinding(report.StatusFailed, report.SeverityHigh, "AUTH_BYPASS")
		f.Details = fmt.Sprintf("Unauthenticated request returned %d %s", resp.StatusCode, resp.Status)
		return f, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return checks.NewFinding(report.StatusPassed, "", "AUTH_ENFORCED"), nil
	default:
		f := checks.NewFinding(report.StatusWarning, report.SeverityMedium, "AUTH_INCONCLUSIVE", resp.StatusCode)
		if resp.Synthetic() {
			f.Details = resp.Err.Error()
		}
		return f, nil
	}
}
