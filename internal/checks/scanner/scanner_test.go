package scanner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MOYARU/apiprobe/internal/checks"
	ctxpkg "github.com/MOYARU/apiprobe/internal/checks/context"
	"github.com/MOYARU/apiprobe/internal/checks/registry"
	"github.com/MOYARU/apiprobe/internal/endpoint"
	"github.com/MOYARU/apiprobe/internal/engine"
	"github.com/MOYARU/apiprobe/internal/report"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient() *engine.Client {
	return engine.NewClient(engine.Options{Timeout: 5 * time.Second})
}

func newTarget(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func getSpec(url string) endpoint.Spec {
	return endpoint.Spec{URL: url, Method: endpoint.MethodGet}
}

func TestRunFindingCountMatchesSelection(t *testing.T) {
	srv := newTarget(t)

	cases := []struct {
		name     string
		selected []string
		want     []string
	}{
		{"empty selects all", nil, []string{"Authentication Check", "Sensitive Data Exposure", "CORS Configuration", "Security Headers", "Rate Limiting"}},
		{"single", []string{registry.CORSCheck}, []string{"CORS Configuration"}},
		{"registry order kept", []string{registry.RateLimit, registry.AuthCheck}, []string{"Authentication Check", "Rate Limiting"}},
		{"unknown ignored", []string{"sql-injection", registry.SecurityHeaders}, []string{"Security Headers"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(getSpec(srv.URL), tc.selected, testClient(), WithLogger(quietLogger()))
			require.NoError(t, err)

			rep, err := s.Run(context.Background())
			require.NoError(t, err)

			names := make([]string, 0, len(rep.Findings))
			for _, f := range rep.Findings {
				names = append(names, f.Name)
			}
			assert.Equal(t, tc.want, names)
		})
	}
}

func TestRunReportFields(t *testing.T) {
	srv := newTarget(t)

	s, err := New(getSpec(srv.URL), []string{registry.SecurityHeaders}, testClient(), WithLogger(quietLogger()))
	require.NoError(t, err)
	rep, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, rep.ID)
	assert.Equal(t, srv.URL, rep.Endpoint.URL)
	require.NotNil(t, rep.StatusCode)
	assert.Equal(t, http.StatusOK, *rep.StatusCode)
	require.NotNil(t, rep.ResponseTimeMs)
	assert.Equal(t, map[string]any{"id": float64(1)}, rep.RawResponse)
	assert.Equal(t, int64(1), rep.ProbeStats[registry.SecurityHeaders].Requests)
}

func TestRunRecoversPanickingCheck(t *testing.T) {
	srv := newTarget(t)

	ok := func(name string) checks.Check {
		return checks.Check{ID: name, Name: name, Run: func(*ctxpkg.Context) (report.Finding, error) {
			return report.Finding{Status: report.StatusPassed, Description: name + " ok"}, nil
		}}
	}
	all := []checks.Check{
		ok("first"),
		{ID: "boom", Name: "boom", Run: func(*ctxpkg.Context) (report.Finding, error) {
			panic("probe exploded")
		}},
		ok("last"),
	}

	s, err := New(getSpec(srv.URL), nil, testClient(), WithRegistry(all), WithLogger(quietLogger()))
	require.NoError(t, err)
	rep, err := s.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, rep.Findings, 3)
	assert.Equal(t, report.Finding{Name: "first", Status: report.StatusPassed, Description: "first ok"}, rep.Findings[0])
	assert.Equal(t, report.Finding{
		Name:        "boom",
		Status:      report.StatusWarning,
		Description: "Test execution failed",
		Details:     "probe exploded",
		Severity:    report.SeverityMedium,
	}, rep.Findings[1])
	assert.Equal(t, report.Finding{Name: "last", Status: report.StatusPassed, Description: "last ok"}, rep.Findings[2])
}

func TestRunConvertsCheckErrorsWithCheckSeverity(t *testing.T) {
	srv := newTarget(t)

	all := []checks.Check{{
		ID:            "broken",
		Name:          "Broken",
		ErrorSeverity: report.SeverityLow,
		Run: func(*ctxpkg.Context) (report.Finding, error) {
			return report.Finding{}, errors.New("no luck")
		},
	}}
	s, err := New(getSpec(srv.URL), nil, testClient(), WithRegistry(all), WithLogger(quietLogger()))
	require.NoError(t, err)
	rep, err := s.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, rep.Findings, 1)
	f := rep.Findings[0]
	assert.Equal(t, report.StatusWarning, f.Status)
	assert.Equal(t, report.SeverityLow, f.Severity)
	assert.Equal(t, "Broken could not be completed.", f.Description)
	assert.Equal(t, "no luck", f.Details)
}

func TestRunKeepsOrderRegardlessOfCompletion(t *testing.T) {
	srv := newTarget(t)

	delayed := func(id string, d time.Duration) checks.Check {
		return checks.Check{ID: id, Name: id, Run: func(*ctxpkg.Context) (report.Finding, error) {
			time.Sleep(d)
			return report.Finding{Status: report.StatusPassed}, nil
		}}
	}
	all := []checks.Check{delayed("slow", 150*time.Millisecond), delayed("medium", 50*time.Millisecond), delayed("fast", 0)}

	s, err := New(getSpec(srv.URL), nil, testClient(), WithRegistry(all), WithLogger(quietLogger()))
	require.NoError(t, err)

	start := time.Now()
	rep, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 290*time.Millisecond, "checks should run concurrently")
	require.Len(t, rep.Findings, 3)
	assert.Equal(t, "slow", rep.Findings[0].Name)
	assert.Equal(t, "medium", rep.Findings[1].Name)
	assert.Equal(t, "fast", rep.Findings[2].Name)
}

func TestRunUnreachableTargetStillReportsEveryProbe(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s, err := New(getSpec(url), nil, testClient(), WithLogger(quietLogger()))
	require.NoError(t, err)
	rep, err := s.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, rep.Findings, 5)
	for _, f := range rep.Findings {
		assert.Equal(t, report.StatusWarning, f.Status, f.Name)
	}
	assert.Nil(t, rep.StatusCode)
	raw, ok := rep.RawResponse.(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, raw["error"])
}

func TestNewRejectsMalformedEndpoint(t *testing.T) {
	_, err := New(endpoint.Spec{URL: "not a url", Method: endpoint.MethodGet}, nil, testClient())
	assert.ErrorIs(t, err, endpoint.ErrInvalidURL)

	body := "{not json"
	_, err = New(endpoint.Spec{URL: "https://api.example.com", Method: endpoint.MethodPost, Body: &body}, nil, testClient())
	assert.ErrorIs(t, err, endpoint.ErrInvalidBody)

	_, err = New(endpoint.Spec{URL: "https://api.example.com", Method: endpoint.MethodGet, Headers: endpoint.Headers{"Bad Header": "v"}}, nil, testClient())
	assert.ErrorIs(t, err, endpoint.ErrInvalidHeader)
}

func TestNewTrimsEndpointURL(t *testing.T) {
	srv := newTarget(t)

	s, err := New(getSpec("  "+srv.URL+"\n"), []string{registry.SecurityHeaders}, testClient(), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, srv.URL, s.Endpoint.URL)

	rep, err := s.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rep.StatusCode)
	assert.Equal(t, http.StatusOK, *rep.StatusCode)
}

func TestRequestBudgetAppliesPerScan(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	s, err := New(getSpec(srv.URL), []string{registry.RateLimit}, testClient(),
		WithRequestBudget(3), WithLogger(quietLogger()))
	require.NoError(t, err)
	rep, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	require.Len(t, rep.Findings, 1)
	assert.Equal(t, report.StatusWarning, rep.Findings[0].Status)
	assert.Equal(t, report.SeverityLow, rep.Findings[0].Severity)
}

type countingObserver struct {
	probes, panics, scans int32
}

func (o *countingObserver) ObserveProbe(string, report.Finding, time.Duration, int64) {
	atomic.AddInt32(&o.probes, 1)
}
func (o *countingObserver) ObservePanic(string)       { atomic.AddInt32(&o.panics, 1) }
func (o *countingObserver) ObserveScan(time.Duration) { atomic.AddInt32(&o.scans, 1) }

func TestObserverSeesEveryProbe(t *testing.T) {
	srv := newTarget(t)
	obs := &countingObserver{}

	s, err := New(getSpec(srv.URL), []string{registry.AuthCheck, registry.CORSCheck}, testClient(),
		WithObserver(obs), WithLogger(quietLogger()))
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), obs.probes)
	assert.Equal(t, int32(0), obs.panics)
	assert.Equal(t, int32(1), obs.scans)
}
