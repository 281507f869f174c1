package engine

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultMaxBodyBytes = 4 << 20 // 4 MiB safety cap

// DecodeResponseBody reads a possibly gzip-encoded body, truncated to max
// bytes. A max of zero or less uses the default cap.
func DecodeResponseBody(resp *http.Response, max int64) ([]byte, error) {
	if max <= 0 {
		max = defaultMaxBodyBytes
	}
	var reader io.ReadCloser
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		reader = r
		defer reader.Close()
	default:
		reader = resp.Body
	}

	limited := io.LimitReader(reader, max+1)
	bodyBytes, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(bodyBytes)) > max {
		bodyBytes = bodyBytes[:max]
	}
	return bodyBytes, nil
}
