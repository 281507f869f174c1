package endpoint

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Headers is a request header set whose keys compare case-insensitively.
// The original spelling of each key is preserved for display.
type Headers map[string]string

// Get returns the value of the first key equal to name ignoring case.
func (h Headers) Get(name string) string {
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Has reports whether any key equals name ignoring case.
func (h Headers) Has(name string) bool {
	for k := range h {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of h.
func (h Headers) Clone() Headers {
	out := make(Headers, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Without returns a copy of h with every key matching one of names removed.
func (h Headers) Without(names ...string) Headers {
	out := make(Headers, len(h))
	for k, v := range h {
		drop := false
		for _, n := range names {
			if strings.EqualFold(k, n) {
				drop = true
				break
			}
		}
		if !drop {
			out[k] = v
		}
	}
	return out
}

// With returns a copy of h where name is set to value, replacing any
// existing key that differs only in case.
func (h Headers) With(name, value string) Headers {
	out := h.Without(name)
	out[name] = value
	return out
}

// Apply copies h onto an outgoing request header.
func (h Headers) Apply(dst http.Header) {
	for k, v := range h {
		dst.Set(k, v)
	}
}

// validate rejects names and values net/http would refuse to send.
func (h Headers) validate() error {
	for _, name := range slices.Sorted(maps.Keys(h)) {
		if !httpguts.ValidHeaderFieldName(name) {
			return fmt.Errorf("%w: name %q", ErrInvalidHeader, name)
		}
		if !httpguts.ValidHeaderFieldValue(h[name]) {
			return fmt.Errorf("%w: value of %q", ErrInvalidHeader, name)
		}
	}
	return nil
}
