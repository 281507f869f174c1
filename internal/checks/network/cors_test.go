package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ctxpkg "github.com/MOYARU/apiprobe/internal/checks/context"
	"github.com/MOYARU/apiprobe/internal/endpoint"
	"github.com/MOYARU/apiprobe/internal/engine"
	"github.com/MOYARU/apiprobe/internal/report"
)

func runCORS(t *testing.T, handler http.HandlerFunc) report.Finding {
	t.Helper()
	srv := httptest.NewServer(handler)
	defer srv.Close()

	f, err := CheckCORSConfiguration(&ctxpkg.Context{
		RequestContext: context.Background(),
		Endpoint:       endpoint.Spec{URL: srv.URL, Method: endpoint.MethodPut},
		Client:         engine.NewClient(engine.Options{Timeout: 2 * time.Second}),
	})
	if err != nil {
		t.Fatalf("CheckCORSConfiguration() error: %v", err)
	}
	return f
}

func corsHeaders(acao, acac string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if acao != "" {
			w.Header().Set("Access-Control-Allow-Origin", acao)
		}
		if acac != "" {
			w.Header().Set("Access-Control-Allow-Credentials", acac)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func TestCORSDecisionOrder(t *testing.T) {
	cases := []struct {
		name     string
		acao     string
		acac     string
		status   report.Status
		severity report.Severity
	}{
		{"wildcard with credentials", "*", "true", report.StatusFailed, report.SeverityHigh},
		{"wildcard with credentials not lowercase", "*", "TRUE", report.StatusWarning, report.SeverityMedium},
		{"wildcard only", "*", "", report.StatusWarning, report.SeverityMedium},
		{"wildcard credentials false", "*", "false", report.StatusWarning, report.SeverityMedium},
		{"reflected origin", ProbeOrigin, "true", report.StatusFailed, report.SeverityHigh},
		{"no cors headers", "", "", report.StatusPassed, ""},
		{"fixed origin", "https://app.example.org", "true", report.StatusPassed, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := runCORS(t, corsHeaders(tc.acao, tc.acac))
			if f.Status != tc.status || f.Severity != tc.severity {
				t.Fatalf("expected %s/%s, got %s/%s", tc.status, tc.severity, f.Status, f.Severity)
			}
		})
	}
}

func TestCORSFixedOriginEchoedInDetails(t *testing.T) {
	f := runCORS(t, corsHeaders("https://app.example.org", ""))
	if f.Details != "Allowed origin: https://app.example.org" {
		t.Fatalf("unexpected details: %q", f.Details)
	}
}

func TestCORSSendsPreflight(t *testing.T) {
	var method, origin, requested string
	runCORS(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		origin = r.Header.Get("Origin")
		requested = r.Header.Get("Access-Control-Request-Method")
	})
	if method != http.MethodOptions {
		t.Fatalf("expected OPTIONS, got %s", method)
	}
	if origin != ProbeOrigin {
		t.Fatalf("unexpected Origin: %q", origin)
	}
	if requested != http.MethodPut {
		t.Fatalf("unexpected Access-Control-Request-Method: %q", requested)
	}
}
