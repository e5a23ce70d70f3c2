package middlewares

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GzipMiddleware())
	r.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})
	r.GET("/go", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "https://example.com")
	})
	return r
}

func gzipped(t *testing.T, s string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf
}

func TestGzipMiddleware(t *testing.T) {
	r := newEngine()

	req := httptest.NewRequest(http.MethodPost, "/echo", gzipped(t, "hello"))
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	gzr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(gzr)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestGzipMiddleware_Plain(t *testing.T) {
	rec := httptest.NewRecorder()
	newEngine().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("plain")))

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "plain", rec.Body.String())
}

func TestGzipMiddleware_BrokenBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()
	newEngine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGzipMiddleware_RedirectNotCompressed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/go", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	newEngine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Location"))
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
}
