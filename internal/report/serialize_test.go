package report

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MOYARU/apiprobe/internal/jsonutil"
)

type withFunc struct {
	Name    string `json:"name"`
	Handler func() `json:"handler"`
	hidden  int
}

func cyclicMap() map[string]any {
	m := map[string]any{"id": 1}
	m["self"] = m
	return m
}

func cyclicSlice() []any {
	s := make([]any, 2)
	s[0] = "head"
	s[1] = s
	return s
}

type node struct {
	Value string `json:"value"`
	Next  *node  `json:"next"`
}

func cyclicNodes() *node {
	a := &node{Value: "a"}
	b := &node{Value: "b", Next: a}
	a.Next = b
	return a
}

func TestSanitizeReturnsEncodableValuesUnchanged(t *testing.T) {
	in := map[string]any{"id": 1.0, "tags": []any{"a", "b"}, "ok": true, "none": nil}
	out := Sanitize(in)
	assert.Equal(t, in, out)
}

func TestSanitizeMappingPlaceholder(t *testing.T) {
	out := Sanitize(map[string]any{"fn": func() {}, "ch": make(chan int), "ok": "yes"})

	m, ok := out.(map[string]any)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, "[Non-serializable func()]", m["fn"])
	assert.Equal(t, "[Non-serializable chan int]", m["ch"])
	assert.Equal(t, "yes", m["ok"])
}

func TestSanitizeStructUsesJSONNames(t *testing.T) {
	out := Sanitize(withFunc{Name: "x", Handler: func() {}, hidden: 3})

	m, ok := out.(map[string]any)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, "x", m["name"])
	assert.Equal(t, "[Non-serializable func()]", m["handler"])
	assert.NotContains(t, m, "hidden")
}

func TestSanitizeBreaksCycles(t *testing.T) {
	for name, v := range map[string]any{
		"map":     cyclicMap(),
		"slice":   cyclicSlice(),
		"pointer": cyclicNodes(),
	} {
		t.Run(name, func(t *testing.T) {
			out := Sanitize(v)
			raw, err := jsonutil.Marshal(out)
			require.NoError(t, err)
			assert.Contains(t, string(raw), circularPlaceholder)
		})
	}
}

func TestSanitizeLeaves(t *testing.T) {
	assert.Equal(t, "NaN", Sanitize(math.NaN()))
	assert.Equal(t, "+Inf", Sanitize(math.Inf(1)))
	assert.Equal(t, []any{"a", "NaN"}, Sanitize([]any{"a", math.NaN()}))

	s, ok := Sanitize(string([]byte{'o', 'k', 0xff})).(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(s, "ok"))
	_, err := jsonutil.Marshal(s)
	assert.NoError(t, err)

	fn, ok := Sanitize(func() {}).(string)
	require.True(t, ok)
	assert.NotEmpty(t, fn)
}

func TestSanitizeIdempotentAndEncodable(t *testing.T) {
	values := []any{
		nil,
		"plain",
		42,
		[]byte{0x00, 0xff},
		map[string]any{"nested": map[string]any{"fn": func() {}}},
		map[int]any{1: math.NaN()},
		[]any{make(chan struct{}), 1.5},
		cyclicMap(),
		cyclicSlice(),
		cyclicNodes(),
		withFunc{Name: "n"},
		map[string]any{string([]byte{0xfe}): "bad key"},
		complex(1, 2),
	}

	for _, v := range values {
		once := Sanitize(v)
		_, err := jsonutil.Marshal(once)
		require.NoError(t, err, "Sanitize(%T) not encodable", v)
		assert.Equal(t, once, Sanitize(once), "Sanitize(%T) not idempotent", v)
	}
}

func TestSummarize(t *testing.T) {
	rep := &ScanReport{Findings: []Finding{
		{Status: StatusPassed},
		{Status: StatusFailed, Severity: SeverityHigh},
		{Status: StatusWarning, Severity: SeverityMedium},
		{Status: StatusWarning, Severity: SeverityLow},
	}}

	s := rep.Summarize()
	assert.Equal(t, Summary{Passed: 1, Failed: 1, Warning: 2, Highest: SeverityHigh}, s)
}

func TestSanitizeReport(t *testing.T) {
	clean := &ScanReport{ID: "x", Findings: []Finding{{Name: "n", Status: StatusPassed}}, RawResponse: map[string]any{"a": 1.0}}
	assert.Same(t, clean, SanitizeReport(clean))

	dirty := &ScanReport{
		ID:          "y",
		Findings:    []Finding{{Name: "n", Status: StatusWarning, Details: "bad \xff byte"}},
		RawResponse: cyclicMap(),
	}
	out := SanitizeReport(dirty)
	require.NotSame(t, dirty, out)

	_, err := jsonutil.Marshal(out)
	require.NoError(t, err)
	assert.Equal(t, "bad � byte", out.Findings[0].Details)
	assert.Equal(t, "bad \xff byte", dirty.Findings[0].Details, "input must not be modified")
}
