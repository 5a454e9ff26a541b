package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type echoRequest struct {
	Input []string `json:"input"`
}

type echoResponse struct {
	Count int `json:"count"`
}

func TestConnectorDoRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"count":2}`))
	}))
	defer srv.Close()

	c := NewConnector(&ConnectorConfig{BaseURL: srv.URL, Logger: zap.NewNop()},
		WithRequestLogging(),
		WithAuthToken("secret"),
	)

	var resp echoResponse
	err := c.DoRequest(context.Background(), http.MethodPost, "/api/embed", echoRequest{Input: []string{"a", "b"}}, &resp)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
}

func TestConnectorHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewConnector(&ConnectorConfig{BaseURL: srv.URL, Logger: zap.NewNop()}, WithAuthToken(""))

	err := c.DoRequest(context.Background(), http.MethodGet, "/missing", nil, nil)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.False(t, httpErr.Temporary())
}

func TestConnectorNetworkError(t *testing.T) {
	c := NewConnector(&ConnectorConfig{BaseURL: "http://127.0.0.1:1", Logger: zap.NewNop()})

	err := c.DoRequest(context.Background(), http.MethodGet, "/", nil, nil)
	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestConnectorUserAgentAndPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "bms-rag", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"count":1}`))
	}))
	defer srv.Close()

	c := NewConnector(&ConnectorConfig{BaseURL: srv.URL, Logger: zap.NewNop()}, WithUserAgent("bms-rag"))

	var resp echoResponse
	require.NoError(t, c.PostJSON(context.Background(), "/", echoRequest{Input: []string{"a"}}, &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestConnectorErrorMessageTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, strings.Repeat("x", 2000), http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewConnector(&ConnectorConfig{BaseURL: srv.URL, Logger: zap.NewNop()})
	err := c.DoRequest(context.Background(), http.MethodGet, "/", nil, nil)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.True(t, httpErr.Temporary())
	assert.Len(t, httpErr.Message, maxErrorMessage+3)
}

func TestNetworkErrorTemporary(t *testing.T) {
	assert.True(t, (&NetworkError{Err: errors.New("connection reset")}).Temporary())
	assert.False(t, (&NetworkError{Err: context.DeadlineExceeded}).Temporary())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewConnector(&ConnectorConfig{BaseURL: "http://127.0.0.1:1", Logger: zap.NewNop()})
	err := c.DoRequest(ctx, http.MethodGet, "/", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
