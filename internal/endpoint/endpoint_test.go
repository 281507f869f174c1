package endpoint

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want error
	}{
		{name: "valid get", spec: Spec{URL: "https://api.example.com/users", Method: MethodGet}},
		{name: "lowercase method", spec: Spec{URL: "http://localhost:8080", Method: "post", Body: strptr(`{"a":1}`)}},
		{name: "relative url", spec: Spec{URL: "/users", Method: MethodGet}, want: ErrInvalidURL},
		{name: "ftp scheme", spec: Spec{URL: "ftp://example.com", Method: MethodGet}, want: ErrInvalidURL},
		{name: "bad method", spec: Spec{URL: "https://example.com", Method: "TRACE"}, want: ErrUnsupportedMethod},
		{name: "bad json body", spec: Spec{URL: "https://example.com", Method: MethodPost, Body: strptr(`{"a":`)}, want: ErrInvalidBody},
		{
			name: "non json body with explicit content type",
			spec: Spec{URL: "https://example.com", Method: MethodPost, Headers: Headers{"content-type": "text/plain"}, Body: strptr("hello")},
		},
		{name: "empty body is fine", spec: Spec{URL: "https://example.com", Method: MethodPost, Body: strptr("")}},
		{name: "header name with space", spec: Spec{URL: "https://example.com", Method: MethodGet, Headers: Headers{"Bad Header": "v"}}, want: ErrInvalidHeader},
		{name: "header value with newline", spec: Spec{URL: "https://example.com", Method: MethodGet, Headers: Headers{"X-Token": "a\r\nInjected: 1"}}, want: ErrInvalidHeader},
		{name: "empty header value", spec: Spec{URL: "https://example.com", Method: MethodGet, Headers: Headers{"X-Empty": ""}}},
		{name: "leading whitespace url", spec: Spec{URL: " https://example.com", Method: MethodGet}, want: ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestHeadersCaseInsensitive(t *testing.T) {
	h := Headers{"Authorization": "Bearer x", "X-API-Key": "k", "Accept": "application/json"}

	assert.Equal(t, "Bearer x", h.Get("authorization"))
	assert.True(t, h.Has("x-api-key"))

	stripped := h.Without("authorization", "x-api-key", "api-key")
	assert.Equal(t, Headers{"Accept": "application/json"}, stripped)
	assert.Len(t, h, 3, "original must not be mutated")

	replaced := h.With("accept", "text/plain")
	assert.Equal(t, "text/plain", replaced.Get("Accept"))
	assert.Len(t, replaced, 3)
}

func TestHeadersApply(t *testing.T) {
	dst := http.Header{}
	Headers{"x-custom": "1"}.Apply(dst)
	assert.Equal(t, "1", dst.Get("X-Custom"))
}

func TestWithHeadersLeavesOriginal(t *testing.T) {
	spec := Spec{URL: "https://example.com", Method: MethodGet, Headers: Headers{"A": "1"}}
	derived := spec.WithHeaders(Headers{})
	assert.Empty(t, derived.Headers)
	assert.Equal(t, "1", spec.Headers.Get("a"))
}
