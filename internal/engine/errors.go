package engine

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Transport failure classes. Synthetic responses wrap one of these so
// callers can use errors.Is.
var (
	ErrTimeout           = errors.New("request timed out")
	ErrDNS               = errors.New("DNS resolution failed")
	ErrConnectionRefused = errors.New("connection refused")
	ErrTLS               = errors.New("TLS handshake failed")
	ErrNetwork           = errors.New("network error")
)

func classifyTransportError(err error) error {
	if err == nil {
		return nil
	}
	var (
		dnsErr     *net.DNSError
		certErr    *tls.CertificateVerificationError
		unknownCA  x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
		recordErr  tls.RecordHeaderError
		netErr     net.Error
	)
	switch {
	case errors.Is(err, ErrRequestBudgetExceeded), errors.Is(err, ErrCrossDomainRedirect):
		return err
	case errors.As(err, &dnsErr):
		return fmt.Errorf("%w: %v", ErrDNS, err)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("%w: %v", ErrConnectionRefused, err)
	case errors.As(err, &certErr), errors.As(err, &unknownCA), errors.As(err, &hostErr),
		errors.As(err, &invalidErr), errors.As(err, &recordErr):
		return fmt.Errorf("%w: %v", ErrTLS, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

func statusTextFor(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "Request Timeout"
	case errors.Is(err, ErrDNS):
		return "DNS Failure"
	case errors.Is(err, ErrConnectionRefused):
		return "Connection Refused"
	case errors.Is(err, ErrTLS):
		return "TLS Failure"
	case errors.Is(err, ErrRequestBudgetExceeded):
		return "Request Budget Exceeded"
	case errors.Is(err, ErrCrossDomainRedirect):
		return "Blocked Redirect"
	}
	return "Network Error"
}
