package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telekom/loghtml/pkg/record"
	"github.com/telekom/loghtml/pkg/version"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{name: "missing server", opts: []Option{}, wantErr: true},
		{name: "empty server", opts: []Option{WithServer("")}, wantErr: true},
		{name: "unsupported scheme", opts: []Option{WithServer("ftp://example.com")}, wantErr: true},
		{name: "missing CA file", opts: []Option{WithServer("https://example.com"), WithTLSConfig("/does/not/exist", false)}, wantErr: true},
		{name: "valid config", opts: []Option{WithServer("https://example.com")}},
		{name: "with custom user agent", opts: []Option{WithServer("http://localhost:8080"), WithUserAgent("test-agent")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, client)
			} else {
				require.NoError(t, err)
				require.NotNil(t, client)
			}
		})
	}
}

func TestRender(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/prefix/api/render", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, version.UserAgent(), r.Header.Get("User-Agent"))

		body, _ := io.ReadAll(r.Body)
		records, err := record.Decode(bytes.NewReader(body))
		assert.NoError(t, err)
		assert.Len(t, records, 2)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html>rendered</html>"))
	}))
	defer server.Close()

	c, err := New(WithServer(server.URL + "/prefix"))
	require.NoError(t, err)

	html, err := c.Render(context.Background(), []record.Record{
		record.New(record.Error, "first"),
		record.New(record.Warning, "second"),
	})
	require.NoError(t, err)
	assert.Equal(t, "<html>rendered</html>", html)
}

func TestRenderRequiresRecords(t *testing.T) {
	c, err := New(WithServer("http://localhost"))
	require.NoError(t, err)

	_, err = c.Render(context.Background(), nil)
	require.Error(t, err)
}

func TestRenderReportsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":   "invalid log records",
			"code":    "BAD_REQUEST",
			"details": "failed to parse record on line 2",
		})
	}))
	defer server.Close()

	c, err := New(WithServer(server.URL))
	require.NoError(t, err)

	_, err = c.Render(context.Background(), []record.Record{record.New(record.Error, "x")})
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "invalid log records: failed to parse record on line 2", httpErr.Message)
}

func TestDecodeErrorFallsBackToStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c, err := New(WithServer(server.URL))
	require.NoError(t, err)

	err = c.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502 Bad Gateway")
}

func TestVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/version", r.URL.Path)
		_ = json.NewEncoder(w).Encode(version.BuildInfo{Version: "v1.0.0", Platform: "linux/arm64"})
	}))
	defer server.Close()

	c, err := New(WithServer(server.URL))
	require.NoError(t, err)

	info, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", info.Version)
	assert.Equal(t, "linux/arm64", info.Platform)
}
