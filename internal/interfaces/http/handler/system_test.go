package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("ping without deadline")
	}
	return p.err
}

func serveHealth(t *testing.T, h *SystemHandler) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	router := gin.New()
	router.GET("/health", h.Health)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		w, resp := serveHealth(t, NewSystemHandler("purchase-ledger", "test", stubPinger{}))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "ok", resp.Database)
	})

	t.Run("database down", func(t *testing.T) {
		w, resp := serveHealth(t, NewSystemHandler("purchase-ledger", "test", stubPinger{err: errors.New("connection refused")}))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "unreachable", resp.Database)
	})

	t.Run("no database configured", func(t *testing.T) {
		w, resp := serveHealth(t, NewSystemHandler("purchase-ledger", "test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "skipped", resp.Database)
	})
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("purchase-ledger", "1.2.3", nil)
	c, w := newTestContext()

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "purchase-ledger", data["name"])
	assert.Equal(t, "1.2.3", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}
