package registry

import (
	"github.com/MOYARU/apiprobe/internal/checks"
	"github.com/MOYARU/apiprobe/internal/checks/api"
	"github.com/MOYARU/apiprobe/internal/checks/authsession"
	"github.com/MOYARU/apiprobe/internal/checks/headers"
	"github.com/MOYARU/apiprobe/internal/checks/info"
	"github.com/MOYARU/apiprobe/internal/checks/network"
	"github.com/MOYARU/apiprobe/internal/report"
)

const (
	AuthCheck       = "auth-check"
	SensitiveData   = "sensitive-data"
	CORSCheck       = "cors-check"
	SecurityHeaders = "security-headers"
	RateLimit       = "rate-limit"
)

var defaultChecks = []checks.Check{
	{
		ID:            AuthCheck,
		Name:          "Authentication Check",
		Description:   "Tests if endpoint requires authentication",
		Category:      checks.CategoryAuthSession,
		ErrorSeverity: report.SeverityMedium,
		Run:           authsession.CheckAuthBypass,
	},
	{
		ID:            SensitiveData,
		Name:          "Sensitive Data Exposure",
		Description:   "Checks for exposed sensitive information",
		Category:      checks.CategoryInformationLeakage,
		ErrorSeverity: report.SeverityMedium,
		Run:           info.CheckSensitiveData,
	},
	{
		ID:            CORSCheck,
		Name:          "CORS Configuration",
		Description:   "Validates CORS settings",
		Category:      checks.CategoryNetwork,
		ErrorSeverity: report.SeverityLow,
		Run:           network.CheckCORSConfiguration,
	},
	{
		ID:            SecurityHeaders,
		Name:          "Security Headers",
		Description:   "Checks for important security headers",
		Category:      checks.CategorySecurityHeaders,
		ErrorSeverity: report.SeverityLow,
		Run:           headers.CheckSecurityHeaders,
	},
	{
		ID:            RateLimit,
		Name:          "Rate Limiting",
		Description:   "Tests for rate limiting implementation",
		Category:      checks.CategoryAPISecurity,
		ErrorSeverity: report.SeverityLow,
		Run:           api.CheckRateLimitEnforcement,
	},
}

// DefaultChecks returns the registered checks in registration order. The
// slice is a copy; the registry itself never changes.
func DefaultChecks() []checks.Check {
	out := make([]checks.Check, len(defaultChecks))
	copy(out, defaultChecks)
	return out
}

// Lookup returns the check registered under id.
func Lookup(id string) (checks.Check, bool) {
	for _, c := range defaultChecks {
		if c.ID == id {
			return c, true
		}
	}
	return checks.Check{}, false
}

// Infos lists the registry for enumeration.
func Infos() []checks.Info {
	out := make([]checks.Info, 0, len(defaultChecks))
	for _, c := range defaultChecks {
		out = append(out, c.Info())
	}
	return out
}
