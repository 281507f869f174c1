package engine

import (
	"net/http"
	"sync/atomic"
	"time"
)

// MetricsTransport counts the requests one probe sends and the time spent
// waiting on them. The scanner gives every probe its own instance and turns
// the snapshot into the probe's report.ProbeStat.
type MetricsTransport struct {
	Base      http.RoundTripper
	requests  int64
	durationN int64
}

// RoundTrip counts failed exchanges too, so a probe against an unreachable
// target still reports the attempts it made.
func (t *MetricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	start := time.Now()
	resp, err := base.RoundTrip(req)
	atomic.AddInt64(&t.requests, 1)
	atomic.AddInt64(&t.durationN, int64(time.Since(start)))
	return resp, err
}

// Snapshot returns the request count and cumulative round-trip time so far.
// Retried attempts count individually.
func (t *MetricsTransport) Snapshot() (requests int64, spent time.Duration) {
	return atomic.LoadInt64(&t.requests), time.Duration(atomic.LoadInt64(&t.durationN))
}
