package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/supportbot/consultbot-go/internal/service"
	"go.uber.org/zap"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(), RequestID(), AccessLog(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, service.RequestIDFrom(c.Request.Context()))
	})
	return r
}

func TestCORS_Preflight(t *testing.T) {
	r := newEngine()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://www.saramin.co.kr")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID_Generated(t *testing.T) {
	r := newEngine()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())
}

func TestRequestID_Propagated(t *testing.T) {
	r := newEngine()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())
}
