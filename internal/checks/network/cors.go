package network

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/MOYARU/apiprobe/internal/checks"
	ctxpkg "github.com/MOYARU/apiprobe/internal/checks/context"
	"github.com/MOYARU/apiprobe/internal/report"
)

// ProbeOrigin is the foreign origin sent with the preflight.
const ProbeOrigin = "https://malicious-site.example.com"

// CheckCORSConfiguration sends a preflight from a foreign origin and
// classifies the Access-Control-Allow-* answer. The first matching rule
// wins.
func CheckCORSConfiguration(ctx *ctxpkg.Context) (report.Finding, error) {
	req := ctx.Request()
	req.Method = http.MethodOptions
	req.Body = nil
	req.Headers = ctx.Endpoint.Headers.
		With("Origin", ProbeOrigin).
		With("Access-Control-Request-Method", string(ctx.Endpoint.Method))

	resp, err := ctx.Do(req)
	if err != nil {
		return report.Finding{}, err
	}
	if err := ctxpkg.Unreachable(resp); err != nil {
		return report.Finding{}, err
	}

	acao := strings.TrimSpace(resp.Header.Get("Access-Control-Allow-Origin"))
	acac := strings.TrimSpace(resp.Header.Get("Access-Control-Allow-Credentials"))
	evidence := fmt.Sprintf("ACAO=%q, ACAC=%q, ACAM=%q, ACAH=%q",
		acao, acac,
		resp.Header.Get("Access-Control-Allow-Methods"),
		resp.Header.Get("Access-Control-Allow-Headers"))

	var f report.Finding
	switch {
	case acao == "*" && acac == "true":
		f = checks.NewFinding(report.StatusFailed, report.SeverityHigh, "CORS_WILDCARD_WITH_CREDENTIALS")
		f.Details = evidence
	case acao == "*":
		f = checks.NewFinding(report.StatusWarning, report.SeverityMedium, "CORS_WILDCARD_ORIGIN")
		f.Details = evidence
	case strings.Contains(acao, ProbeOrigin):
		f = checks.NewFinding(report.StatusFailed, report.SeverityHigh, "CORS_ORIGIN_REFLECTION", ProbeOrigin)
		f.Details = evidence
	case acao == "":
		f = checks.NewFinding(report.StatusPassed, "", "CORS_NOT_EXPOSED")
	default:
		f = checks.NewFinding(report.StatusPassed, "", "CORS_RESTRICTED")
		f.Details = "Allowed origin: " + acao
	}
	return f, nil
}
