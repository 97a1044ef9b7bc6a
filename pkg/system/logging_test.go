package system

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetReqLoggerFallbackWhenContextNil(t *testing.T) {
	fallback := zap.NewNop().Sugar()
	require.Same(t, fallback, GetReqLogger(nil, fallback))
}

func TestGetReqLoggerFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	fallback := zap.NewNop().Sugar()
	stored := zap.NewNop().Sugar()
	ctx.Set(ReqLoggerKey, stored)
	require.Same(t, stored, GetReqLogger(ctx, fallback))
}

func TestGetReqLoggerIgnoresInvalidTypes(t *testing.T) {
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	fallback := zap.NewNop().Sugar()
	ctx.Set(ReqLoggerKey, "not-a-logger")
	require.Same(t, fallback, GetReqLogger(ctx, fallback))
}

func newEngine(base *zap.SugaredLogger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestLogger(base))
	engine.GET("/api/render", func(c *gin.Context) {
		GetReqLogger(c, nil).Info("handled")
		c.Status(http.StatusNoContent)
	})
	return engine
}

func TestRequestLoggerGeneratesID(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	engine := newEngine(zap.New(core).Sugar())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/render", nil))

	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, id, fields["requestID"])
	assert.Equal(t, http.MethodGet, fields["method"])
	assert.Equal(t, "/api/render", fields["path"])
}

func TestRequestLoggerReusesIncomingID(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	engine := newEngine(zap.New(core).Sugar())

	req := httptest.NewRequest(http.MethodGet, "/api/render", nil)
	req.Header.Set(RequestIDHeader, "trace-42")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, "trace-42", w.Header().Get(RequestIDHeader))
	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "trace-42", recorded.All()[0].ContextMap()["requestID"])
}

func TestRequestLoggerReplacesOversizedID(t *testing.T) {
	engine := newEngine(zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodGet, "/api/render", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("a", maxRequestIDLength+1))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
