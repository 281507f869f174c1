package context

import (
	"context"
	"errors"
	"fmt"

	"github.com/MOYARU/apiprobe/internal/endpoint"
	"github.com/MOYARU/apiprobe/internal/engine"
)

// Context is what a probe sees. Each probe gets its own copy, so Client may
// carry per-probe instrumentation.
type Context struct {
	RequestContext context.Context
	Endpoint       endpoint.Spec
	Client         *engine.Client
}

// Do sends req with the scan's request context.
func (c *Context) Do(req engine.Request) (*engine.Response, error) {
	ctx := c.RequestContext
	if ctx == nil {
		ctx = context.Background()
	}
	return c.Client.Do(ctx, req)
}

// Request returns the unmodified request described by the endpoint.
func (c *Context) Request() engine.Request {
	return engine.RequestFor(c.Endpoint)
}

// ErrUnreachable marks a probe that only observed a synthetic response.
var ErrUnreachable = errors.New("target unreachable")

// Unreachable returns a non-nil error when resp stands in for a failed
// exchange.
func Unreachable(resp *engine.Response) error {
	if resp == nil {
		return ErrUnreachable
	}
	if resp.Synthetic() {
		return fmt.Errorf("%w: %v", ErrUnreachable, resp.Err)
	}
	return nil
}
