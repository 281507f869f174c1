package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	appver "github.com/MOYARU/apiprobe/internal/version"
)

const DefaultPolicyPath = ".apiprobe.yaml"

type ScanPolicy struct {
	TimeoutMs          int      `yaml:"timeout_ms"`
	Retries            int      `yaml:"retries"`
	FollowRedirects    bool     `yaml:"follow_redirects"`
	InsecureSkipVerify bool     `yaml:"insecure_skip_verify"`
	UserAgent          string   `yaml:"user_agent"`
	RequestBudget      int64    `yaml:"request_budget"`
	MaxBodyBytes       int64    `yaml:"max_body_bytes"`
	RedactionPatterns  []string `yaml:"redaction_patterns"`
}

var scanPolicyCache struct {
	mu      sync.RWMutex
	path    string
	exists  bool
	modTime int64
	policy  ScanPolicy
}

func DefaultScanPolicy() ScanPolicy {
	return ScanPolicy{
		TimeoutMs:          30000,
		Retries:            0,
		FollowRedirects:    false,
		InsecureSkipVerify: false,
		UserAgent:          appver.ScannerUserAgent(),
		RequestBudget:      0, // 0 means unlimited
		MaxBodyBytes:       4 << 20,
	}
}

// Timeout returns the per-request timeout as a duration.
func (p ScanPolicy) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

// LoadScanPolicy reads optional keys from the YAML file at path:
// timeout_ms: 30000
// retries: 1
// follow_redirects: false
// insecure_skip_verify: false
// user_agent: "custom"
// request_budget: 50
// max_body_bytes: 4194304
// redaction_patterns:
//   - 'internal-[0-9]+'
//
// A missing file yields the defaults. Results are cached per path and
// modification time.
func LoadScanPolicy(path string) (ScanPolicy, error) {
	p := DefaultScanPolicy()
	if path == "" {
		path = DefaultPolicyPath
	}
	absPath, err := filepath.Abs(path)
	if err == nil {
		path = absPath
	}

	st, statErr := os.Stat(path)
	if statErr != nil {
		scanPolicyCache.mu.Lock()
		scanPolicyCache.path = path
		scanPolicyCache.exists = false
		scanPolicyCache.modTime = 0
		scanPolicyCache.policy = p
		scanPolicyCache.mu.Unlock()
		return p, nil
	}

	modTime := st.ModTime().UnixNano()
	scanPolicyCache.mu.RLock()
	if scanPolicyCache.path == path && scanPolicyCache.exists && scanPolicyCache.modTime == modTime {
		cached := scanPolicyCache.policy
		scanPolicyCache.mu.RUnlock()
		return cached, nil
	}
	scanPolicyCache.mu.RUnlock()

	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read scan policy: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return DefaultScanPolicy(), fmt.Errorf("parse scan policy %s: %w", path, err)
	}
	p.Normalize()

	scanPolicyCache.mu.Lock()
	scanPolicyCache.path = path
	scanPolicyCache.exists = true
	scanPolicyCache.modTime = modTime
	scanPolicyCache.policy = p
	scanPolicyCache.mu.Unlock()

	return p, nil
}

// Normalize replaces out-of-range values with defaults. Call it again after
// overriding fields from flags or requests.
func (p *ScanPolicy) Normalize() {
	def := DefaultScanPolicy()
	if p.TimeoutMs <= 0 {
		p.TimeoutMs = def.TimeoutMs
	}
	if p.Retries < 0 {
		p.Retries = 0
	}
	if p.UserAgent == "" {
		p.UserAgent = def.UserAgent
	}
	if p.RequestBudget < 0 {
		p.RequestBudget = 0
	}
	if p.MaxBodyBytes <= 0 {
		p.MaxBodyBytes = def.MaxBodyBytes
	}
}
