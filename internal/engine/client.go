package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MOYARU/apiprobe/internal/endpoint"
	"github.com/MOYARU/apiprobe/internal/jsonutil"
	"github.com/MOYARU/apiprobe/internal/report"
)

// Request is one outgoing probe request. Probes derive it from an
// endpoint.Spec and may override the method or add headers.
type Request struct {
	Method  string
	URL     string
	Headers endpoint.Headers
	Body    *string
}

// RequestFor builds the unmodified request described by spec.
func RequestFor(spec endpoint.Spec) Request {
	return Request{
		Method:  string(spec.Method),
		URL:     spec.URL,
		Headers: spec.Headers,
		Body:    spec.Body,
	}
}

// Response is what a probe observes. Every HTTP status is a valid response.
// When the exchange could not complete, Err is set and the rest is
// synthesized: status 500, a status text naming the failure class, empty
// headers and {"message": <error>} as data.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Data       any
	Duration   time.Duration
	Err        error
}

// Synthetic reports whether r stands in for a failed exchange.
func (r *Response) Synthetic() bool {
	return r.Err != nil
}

// Client issues single hardened requests against the target.
type Client struct {
	http *http.Client
	opts Options
}

func NewClient(opts Options) *Client {
	return &Client{http: NewHTTPClient(opts), opts: opts}
}

// NewClientWith wraps an existing http.Client, e.g. an httptest server client.
func NewClientWith(hc *http.Client, opts Options) *Client {
	if hc == nil {
		hc = NewHTTPClient(opts)
	}
	return &Client{http: hc, opts: opts}
}

// WithTransport returns a copy of c whose transport is wrapped by wrap.
// The underlying connection pool is shared.
func (c *Client) WithTransport(wrap func(http.RoundTripper) http.RoundTripper) *Client {
	hc := *c.http
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc.Transport = wrap(base)
	return &Client{http: &hc, opts: c.opts}
}

func (c *Client) Options() Options {
	return c.opts
}

// Do sends req and never returns a transport failure as an error: those
// become synthetic responses. The error return is reserved for requests
// that cannot be constructed at all.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	retries := max(0, c.opts.Retries)

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.opts.RetryDelay*time.Duration(attempt)); err != nil {
				lastErr = classifyTransportError(err)
				break
			}
		}

		httpReq, err := c.newRequest(ctx, req)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(httpReq)
		if err == nil {
			out := c.readResponse(resp)
			out.Duration = time.Since(start)
			return out, nil
		}
		lastErr = classifyTransportError(err)
		if errors.Is(lastErr, ErrRequestBudgetExceeded) || errors.Is(lastErr, ErrCrossDomainRedirect) || ctx.Err() != nil {
			break
		}
	}

	return synthesize(lastErr, time.Since(start)), nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil && *req.Body != "" {
		body = strings.NewReader(*req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.opts.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.opts.UserAgent)
	}
	req.Headers.Apply(httpReq.Header)
	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

func (c *Client) readResponse(resp *http.Response) *Response {
	defer resp.Body.Close()

	out := &Response{
		StatusCode: resp.StatusCode,
		Status:     statusText(resp),
		Header:     resp.Header.Clone(),
	}
	if out.Header == nil {
		out.Header = http.Header{}
	}

	body, err := DecodeResponseBody(resp, c.opts.MaxBodyBytes)
	if err != nil {
		out.Data = map[string]any{"message": err.Error()}
		return out
	}
	out.Data = report.Sanitize(decodeData(body))
	return out
}

// decodeData returns parsed JSON when the body is JSON and the raw text
// otherwise.
func decodeData(body []byte) any {
	if len(body) == 0 {
		return ""
	}
	if jsonutil.Valid(body) {
		var v any
		if err := jsonutil.Unmarshal(body, &v); err == nil {
			return v
		}
	}
	return string(body)
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func synthesize(err error, elapsed time.Duration) *Response {
	if err == nil {
		err = ErrNetwork
	}
	return &Response{
		StatusCode: http.StatusInternalServerError,
		Status:     statusTextFor(err),
		Header:     http.Header{},
		Data:       report.Sanitize(map[string]any{"message": err.Error()}),
		Duration:   elapsed,
		Err:        err,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
