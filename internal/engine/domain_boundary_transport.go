package engine

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var ErrCrossDomainRedirect = errors.New("blocked cross-domain request")

// DomainBoundaryTransport blocks requests outside the allowed root domain.
// It keeps followed redirects on the scanned site.
type DomainBoundaryTransport struct {
	Base              http.RoundTripper
	AllowedRootDomain string
}

func (t *DomainBoundaryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	host := strings.ToLower(req.URL.Hostname())
	if host == "" {
		return nil, fmt.Errorf("%w: empty host", ErrCrossDomainRedirect)
	}
	allowed := strings.ToLower(strings.TrimSpace(t.AllowedRootDomain))
	if allowed != "" {
		root := RootDomain(host)
		if root != allowed && host != allowed && !strings.HasSuffix(host, "."+allowed) {
			return nil, fmt.Errorf("%w: %s (allowed root: %s)", ErrCrossDomainRedirect, host, allowed)
		}
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// RootDomain returns the registrable domain of host, or host itself for
// IP addresses and single-label names.
func RootDomain(host string) string {
	host = strings.ToLower(host)
	root, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return root
}
