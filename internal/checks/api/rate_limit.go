package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/MOYARU/apiprobe/internal/checks"
	ctxpkg "github.com/MOYARU/apiprobe/internal/checks/context"
	"github.com/MOYARU/apiprobe/internal/engine"
	"github.com/MOYARU/apiprobe/internal/report"
)

// BurstSize is the number of concurrent requests fired by the probe.
const BurstSize = 5

const fastBurstThreshold = time.Second

var rateLimitHeaders = []string{
	"X-Rate-Limit-Limit",
	"X-Rate-Limit-Remaining",
	"X-Rate-Limit-Reset",
	"Retry-After",
	"RateLimit-Limit",
	"RateLimit-Remaining",
	"RateLimit-Reset",
}

// CheckRateLimitEnforcement fires a concurrent burst against the endpoint
// and looks for throttling evidence.
func CheckRateLimitEnforcement(ctx *ctxpkg.Context) (report.Finding, error) {
	responses, elapsed, err := burst(ctx, BurstSize)
	if err != nil {
		return report.Finding{}, err
	}

	for _, resp := range responses {
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
			return checks.NewFinding(report.StatusPassed, "", "RATE_LIMIT_ENFORCED"), nil
		}
	}
	for _, resp := range responses {
		if hasRateLimitHeaders(resp.Header) {
			return checks.NewFinding(report.StatusPassed, "", "RATE_LIMIT_HEADERS"), nil
		}
	}

	allOK := true
	for _, resp := range responses {
		if resp.StatusCode >= 400 {
			allOK = false
			break
		}
	}
	ms := elapsed.Milliseconds()
	if elapsed < fastBurstThreshold && allOK {
		return checks.NewFinding(report.StatusWarning, report.SeverityMedium, "RATE_LIMIT_ABSENT", len(responses), ms), nil
	}
	return checks.NewFinding(report.StatusWarning, report.SeverityLow, "RATE_LIMIT_INCONCLUSIVE", len(responses), ms), nil
}

// burst sends n copies of the endpoint request at once and waits for all of
// them. Responses are returned in send order.
func burst(ctx *ctxpkg.Context, n int) ([]*engine.Response, time.Duration, error) {
	responses := make([]*engine.Response, n)
	errs := make([]error, n)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			responses[i], errs[i] = ctx.Do(ctx.Request())
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	for _, err := range errs {
		if err != nil {
			return nil, elapsed, err
		}
	}
	return responses, elapsed, nil
}

func hasRateLimitHeaders(h http.Header) bool {
	for _, name := range rateLimitHeaders {
		if h.Get(name) != "" {
			return true
		}
	}
	return false
}
