package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsEndpoint(t *testing.T) {
	r := newTestServer(t, nil)
	doJSON(t, r, http.MethodGet, "/health", "", nil)

	w := doJSON(t, r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `todo_tracker_http_requests_total{method="GET",route="/health",status="200"}`)
}
