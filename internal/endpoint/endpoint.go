// Package endpoint describes the single HTTP(S) endpoint a scan targets.
package endpoint

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/MOYARU/apiprobe/internal/jsonutil"
)

var (
	ErrInvalidURL        = errors.New("invalid endpoint URL")
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")
	ErrInvalidBody       = errors.New("invalid JSON body")
	ErrInvalidHeader     = errors.New("invalid request header")
)

type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodPatch  Method = "PATCH"
)

// ParseMethod accepts a method name case-insensitively.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, s)
}

// Spec is the endpoint under test. Callers own it; the engine only reads it
// and derives local copies through the With* helpers.
type Spec struct {
	URL     string  `json:"url"`
	Method  Method  `json:"method"`
	Headers Headers `json:"headers,omitempty"`
	Body    *string `json:"body,omitempty"`
}

// HasBody reports whether a non-empty body is set.
func (s Spec) HasBody() bool {
	return s.Body != nil && *s.Body != ""
}

// WithHeaders returns a copy of s carrying h instead of its own headers.
func (s Spec) WithHeaders(h Headers) Spec {
	s.Headers = h
	return s
}

// Validate reports request-construction errors that make any scan pointless.
// It never touches the network.
func (s Spec) Validate() error {
	if s.URL != strings.TrimSpace(s.URL) {
		return fmt.Errorf("%w: surrounding whitespace", ErrInvalidURL)
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q (only http/https allowed)", ErrInvalidURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	if _, err := ParseMethod(string(s.Method)); err != nil {
		return err
	}
	if err := s.Headers.validate(); err != nil {
		return err
	}
	if s.HasBody() && s.expectsJSONBody() && !jsonutil.Valid([]byte(*s.Body)) {
		return ErrInvalidBody
	}
	return nil
}

func (s Spec) expectsJSONBody() bool {
	ct := s.Headers.Get("Content-Type")
	return ct == "" || strings.Contains(strings.ToLower(ct), "json")
}
