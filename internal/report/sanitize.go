package report

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/MOYARU/apiprobe/internal/endpoint"
)

var (
	reBearer    = regexp.MustCompile(`(?i)\b(bearer\s+)([a-z0-9\-\._~\+\/]+=*)`)
	reApiKeyKV  = regexp.MustCompile(`(?i)\b(api[_-]?key|access[_-]?token|token|secret|authorization)\s*[:=]\s*([^\s,;]+)`)
	reLongToken = regexp.MustCompile(`\b[a-zA-Z0-9_\-]{24,}\b`)
)

// credentialHeaders are request headers whose values never leave the process.
var credentialHeaders = []string{"Authorization", "X-Api-Key", "Api-Key", "Cookie", "Proxy-Authorization"}

// Redactor masks secrets in text persisted outside the process. Extra
// patterns come from the scan policy.
type Redactor struct {
	custom []*regexp.Regexp
}

// NewRedactor compiles patterns, skipping any that do not compile.
func NewRedactor(patterns []string) *Redactor {
	r := &Redactor{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err == nil {
			r.custom = append(r.custom, re)
		}
	}
	return r
}

func (r *Redactor) Text(s string) string {
	out := s
	out = reBearer.ReplaceAllString(out, "${1}<redacted>")
	out = reApiKeyKV.ReplaceAllString(out, "${1}=<redacted>")
	out = reLongToken.ReplaceAllStringFunc(out, func(tok string) string {
		if len(tok) <= 10 {
			return "<redacted>"
		}
		return tok[:4] + "...<redacted>..." + tok[len(tok)-4:]
	})
	if r != nil {
		for _, re := range r.custom {
			out = re.ReplaceAllString(out, "<redacted>")
		}
	}
	return out
}

func (r *Redactor) URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return r.Text(raw)
	}

	q := u.Query()
	for k := range q {
		kl := strings.ToLower(k)
		if strings.Contains(kl, "token") ||
			strings.Contains(kl, "key") ||
			strings.Contains(kl, "secret") ||
			strings.Contains(kl, "auth") ||
			strings.Contains(kl, "session") ||
			strings.Contains(kl, "pass") {
			q.Set(k, "<redacted>")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Endpoint returns a copy of spec safe to write to disk: credential headers
// are masked and the URL query is scrubbed. The body is left alone.
func (r *Redactor) Endpoint(spec endpoint.Spec) endpoint.Spec {
	spec.URL = r.URL(spec.URL)
	headers := spec.Headers.Clone()
	for k := range headers {
		for _, name := range credentialHeaders {
			if strings.EqualFold(k, name) {
				headers[k] = "<redacted>"
			}
		}
	}
	spec.Headers = headers
	return spec
}

// Report returns a shallow copy of rep with the endpoint and finding details
// redacted. Findings are copied so rep itself is untouched.
func (r *Redactor) Report(rep *ScanReport) *ScanReport {
	cp := *rep
	cp.Endpoint = r.Endpoint(rep.Endpoint)
	cp.Findings = make([]Finding, len(rep.Findings))
	for i, f := range rep.Findings {
		f.Details = r.Text(f.Details)
		cp.Findings[i] = f
	}
	return &cp
}
