package middlewares

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxDecompressedBody предел распакованного тела запроса.
const maxDecompressedBody = 1 << 20

// gzipWriter обертка над gin.ResponseWriter для сжатия ответов в формате gzip.
type gzipWriter struct {
	gin.ResponseWriter
	writer *gzip.Writer
}

func (g *gzipWriter) Write(data []byte) (int, error) {
	g.Header().Del("Content-Length")
	return g.writer.Write(data) //nolint:wrapcheck
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.Write([]byte(s))
}

// GzipMiddleware распаковывает тело запроса с Content-Encoding: gzip и сжимает ответ,
// если клиент прислал Accept-Encoding: gzip.
//
// Редиректы и ответы без тела (HEAD, 204, 304) не сжимаются.
func GzipMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !readGzip(ctx) {
			return
		}
		writeGzip(ctx)
	}
}

func writeGzip(ctx *gin.Context) {
	if ctx.Request.Method == http.MethodHead ||
		!strings.Contains(ctx.Request.Header.Get("Accept-Encoding"), "gzip") {
		ctx.Next()
		return
	}

	gzWriter := &lazyGzipWriter{ResponseWriter: ctx.Writer}
	ctx.Writer = gzWriter
	defer func() {
		if closeErr := gzWriter.close(); closeErr != nil {
			_ = ctx.Error(fmt.Errorf("close gzip writer: %w", closeErr))
		}
	}()
	ctx.Next()
}

// lazyGzipWriter включает сжатие при первой записи тела, когда статус уже известен.
type lazyGzipWriter struct {
	gin.ResponseWriter
	gz *gzipWriter
}

func (w *lazyGzipWriter) Write(data []byte) (int, error) {
	if w.gz == nil && compressible(w.Status()) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		w.gz = &gzipWriter{ResponseWriter: w.ResponseWriter, writer: gzip.NewWriter(w.ResponseWriter)}
	}
	if w.gz != nil {
		return w.gz.Write(data)
	}
	return w.ResponseWriter.Write(data) //nolint:wrapcheck
}

func (w *lazyGzipWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *lazyGzipWriter) close() error {
	if w.gz == nil {
		return nil
	}
	return w.gz.writer.Close() //nolint:wrapcheck
}

func compressible(status int) bool {
	switch {
	case status >= http.StatusMultipleChoices && status < http.StatusBadRequest:
		return false
	case status == http.StatusNoContent:
		return false
	default:
		return true
	}
}

// readGzip Определяет сжаты ли данные gzip. Имеет смысл это делать только для POST|PUT|PATCH запросов
// затем распаковывает gzip и подменяет тело запроса на распакованное.
// Возвращает false, если запрос уже прерван.
func readGzip(ctx *gin.Context) bool {
	if !slices.Contains([]string{http.MethodPost, http.MethodPut, http.MethodPatch}, ctx.Request.Method) {
		return true
	}
	if !strings.Contains(ctx.Request.Header.Get("Content-Encoding"), "gzip") {
		return true
	}

	gzReader, gzErr := gzip.NewReader(ctx.Request.Body)
	if gzErr != nil {
		_ = ctx.Error(fmt.Errorf("read gzip: %w", gzErr))
		ctx.AbortWithStatus(http.StatusBadRequest)
		return false
	}
	defer func() {
		if closeErr := gzReader.Close(); closeErr != nil {
			_ = ctx.Error(fmt.Errorf("close gzip reader: %w", closeErr))
		}
	}()
	bodyBytes, err := io.ReadAll(io.LimitReader(gzReader, maxDecompressedBody+1))
	if err != nil {
		_ = ctx.Error(fmt.Errorf("read gzip: %w", err))
		ctx.AbortWithStatus(http.StatusBadRequest)
		return false
	}
	if len(bodyBytes) > maxDecompressedBody {
		ctx.AbortWithStatus(http.StatusRequestEntityTooLarge)
		return false
	}

	ctx.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	ctx.Request.Header.Del("Content-Encoding")
	return true
}
