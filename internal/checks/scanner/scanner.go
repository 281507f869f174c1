package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MOYARU/apiprobe/internal/checks"
	ctxpkg "github.com/MOYARU/apiprobe/internal/checks/context"
	"github.com/MOYARU/apiprobe/internal/checks/registry"
	"github.com/MOYARU/apiprobe/internal/endpoint"
	"github.com/MOYARU/apiprobe/internal/engine"
	msges "github.com/MOYARU/apiprobe/internal/messages"
	"github.com/MOYARU/apiprobe/internal/report"
)

// Observer receives per-probe and per-scan measurements.
type Observer interface {
	ObserveProbe(probeID string, f report.Finding, elapsed time.Duration, requests int64)
	ObservePanic(probeID string)
	ObserveScan(elapsed time.Duration)
}

type Scanner struct {
	Endpoint endpoint.Spec
	Checks   []checks.Check

	client   *engine.Client
	registry []checks.Check
	budget   int64
	logger   *slog.Logger
	observer Observer
}

type Option func(*Scanner)

func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

func WithObserver(o Observer) Option {
	return func(s *Scanner) { s.observer = o }
}

// WithRequestBudget caps the number of outgoing requests of one scan run.
// Zero means unlimited.
func WithRequestBudget(max int64) Option {
	return func(s *Scanner) { s.budget = max }
}

// WithRegistry replaces the registered checks selection resolves against.
func WithRegistry(all []checks.Check) Option {
	return func(s *Scanner) { s.registry = all }
}

// New trims the endpoint URL, validates spec and resolves the selected check
// ids. An empty selection runs every registered check. Ids that are not
// registered are ignored.
func New(spec endpoint.Spec, selected []string, client *engine.Client, opts ...Option) (*Scanner, error) {
	spec.URL = strings.TrimSpace(spec.URL)
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	if client == nil {
		client = engine.NewClient(engine.Options{})
	}

	s := &Scanner{
		Endpoint: spec,
		client:   client,
		registry: registry.DefaultChecks(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.Checks = resolveChecks(s.registry, selected, s.logger)
	return s, nil
}

func resolveChecks(all []checks.Check, selected []string, logger *slog.Logger) []checks.Check {
	if len(selected) == 0 {
		return all
	}
	want := make(map[string]bool, len(selected))
	for _, id := range selected {
		want[id] = true
	}

	var out []checks.Check
	for _, c := range all {
		if want[c.ID] {
			out = append(out, c)
			delete(want, c.ID)
		}
	}
	for id := range want {
		logger.Warn("ignoring unknown probe", slog.String("probe", id))
	}
	return out
}

// Run issues the baseline request, runs every resolved check concurrently
// and assembles the report. Findings follow check order regardless of
// completion order. A failing or panicking check never affects the others.
func (s *Scanner) Run(ctx context.Context) (*report.ScanReport, error) {
	start := time.Now()
	client, budget := s.scanClient()

	baseline, err := client.Do(ctx, engine.RequestFor(s.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("baseline request: %w", err)
	}

	findings := make([]report.Finding, len(s.Checks))
	stats := make([]report.ProbeStat, len(s.Checks))

	s.logger.Debug("scan started",
		slog.String("url", s.Endpoint.URL),
		slog.Int("probes", len(s.Checks)))

	var wg sync.WaitGroup
	for i, check := range s.Checks {
		wg.Add(1)
		go func(i int, c checks.Check) {
			defer wg.Done()
			findings[i], stats[i] = s.runCheck(ctx, client, c)
		}(i, check)
	}
	wg.Wait()
	elapsed := time.Since(start)

	rep := &report.ScanReport{
		ID:         uuid.NewString(),
		Endpoint:   s.Endpoint,
		Timestamp:  start.UTC(),
		Findings:   findings,
		ProbeStats: make(map[string]report.ProbeStat, len(s.Checks)),
	}
	for i, c := range s.Checks {
		rep.ProbeStats[c.ID] = stats[i]
	}

	responseTimeMs := elapsed.Milliseconds()
	rep.ResponseTimeMs = &responseTimeMs
	if baseline.Synthetic() {
		rep.RawResponse = map[string]any{"error": baseline.Err.Error()}
	} else {
		status := baseline.StatusCode
		rep.StatusCode = &status
		rep.RawResponse = baseline.Data
	}

	if s.observer != nil {
		s.observer.ObserveScan(elapsed)
	}
	s.logger.Debug("scan finished",
		slog.String("url", s.Endpoint.URL),
		slog.Duration("elapsed", elapsed),
		slog.Int64("requests", budget.Used()))

	return report.SanitizeReport(rep), nil
}

// scanClient layers the scan-wide transports over the shared client:
// the domain boundary when redirects are followed, then the request budget.
func (s *Scanner) scanClient() (*engine.Client, *engine.RequestBudgetTransport) {
	budget := &engine.RequestBudgetTransport{Max: s.budget}
	client := s.client.WithTransport(func(base http.RoundTripper) http.RoundTripper {
		if s.client.Options().FollowRedirects {
			if u, err := url.Parse(s.Endpoint.URL); err == nil {
				base = &engine.DomainBoundaryTransport{
					Base:              base,
					AllowedRootDomain: engine.RootDomain(u.Hostname()),
				}
			}
		}
		budget.Base = base
		return budget
	})
	return client, budget
}

func (s *Scanner) runCheck(ctx context.Context, client *engine.Client, c checks.Check) (f report.Finding, stat report.ProbeStat) {
	mt := &engine.MetricsTransport{}
	checkClient := client.WithTransport(func(base http.RoundTripper) http.RoundTripper {
		mt.Base = base
		return mt
	})
	localCtx := &ctxpkg.Context{
		RequestContext: ctx,
		Endpoint:       s.Endpoint,
		Client:         checkClient,
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("probe panicked",
				slog.String("probe", c.ID),
				slog.Any("panic", r))
			if s.observer != nil {
				s.observer.ObservePanic(c.ID)
			}
			f = report.Finding{
				Status:      report.StatusWarning,
				Description: msges.GetMessage("PROBE_EXECUTION_FAILED").Message,
				Details:     fmt.Sprint(r),
				Severity:    report.SeverityMedium,
			}
		}
		f.Name = c.Name

		requests, spent := mt.Snapshot()
		stat = report.ProbeStat{Requests: requests, DurationMs: spent.Milliseconds()}
		elapsed := time.Since(start)
		if s.observer != nil {
			s.observer.ObserveProbe(c.ID, f, elapsed, requests)
		}
		s.logger.Debug("probe finished",
			slog.String("probe", c.ID),
			slog.String("status", string(f.Status)),
			slog.Duration("elapsed", elapsed))
	}()

	result, err := c.Run(localCtx)
	if err != nil {
		severity := c.ErrorSeverity
		if severity == "" {
			severity = report.SeverityMedium
		}
		return report.Finding{
			Status:      report.StatusWarning,
			Description: fmt.Sprintf(msges.GetMessage("PROBE_INCOMPLETE").Message, c.Name),
			Details:     err.Error(),
			Severity:    severity,
		}, stat
	}
	return result, stat
}
