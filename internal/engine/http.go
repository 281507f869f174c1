package engine

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/MOYARU/apiprobe/internal/config"
)

// Options configures the probe client. Every value comes from the scan
// policy or CLI flags.
type Options struct {
	Timeout            time.Duration
	Retries            int
	RetryDelay         time.Duration
	FollowRedirects    bool
	InsecureSkipVerify bool
	UserAgent          string
	MaxBodyBytes       int64
}

func OptionsFromPolicy(p config.ScanPolicy) Options {
	return Options{
		Timeout:            p.Timeout(),
		Retries:            p.Retries,
		RetryDelay:         250 * time.Millisecond,
		FollowRedirects:    p.FollowRedirects,
		InsecureSkipVerify: p.InsecureSkipVerify,
		UserAgent:          p.UserAgent,
		MaxBodyBytes:       p.MaxBodyBytes,
	}
}

func NewHTTPClient(opts Options) *http.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion:         tls.VersionTLS12,
				InsecureSkipVerify: opts.InsecureSkipVerify,
			},
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          64,
			MaxIdleConnsPerHost:   16,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
	if !opts.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client
}
