package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/expense-tracker/pkg/configpkg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	t.Parallel()

	var ctxLogger *zerolog.Logger

	server := gin.New()
	server.Use(RequestLogger(zerolog.Nop()))
	server.GET("/", func(c *gin.Context) {
		ctxLogger = zerolog.Ctx(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	server.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusNoContent, recorder.Code)
	require.NotEmpty(t, recorder.Header().Get(RequestIDHeader))
	require.NotNil(t, ctxLogger)

	recorder = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	server.ServeHTTP(recorder, req)

	require.Equal(t, "given-id", recorder.Header().Get(RequestIDHeader))
}

func TestRequestLoggerRecoversPanic(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	server := gin.New()
	server.Use(RequestLogger(zerolog.New(&buf)))
	server.Use(Serialize())
	server.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	server.GET("/", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(RequestIDHeader, "panic-id")
	server.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	require.Contains(t, buf.String(), "panic message: boom")
	require.Contains(t, buf.String(), "panic-id")

	// The serialized chain is released after a panic.
	recorder = httptest.NewRecorder()
	server.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestSerialize(t *testing.T) {
	t.Parallel()

	var running, maxRunning int32

	server := gin.New()
	server.Use(Serialize())
	server.GET("/", func(c *gin.Context) {
		n := atomic.AddInt32(&running, 1)
		for {
			m := atomic.LoadInt32(&maxRunning)
			if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
				break
			}
		}

		time.Sleep(time.Millisecond)
		atomic.AddInt32(&running, -1)
		c.Status(http.StatusOK)
	})

	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			server.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		}()
	}

	wg.Wait()
	require.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
}

func TestCreateLoggerLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, zerolog.InfoLevel, CreateLogger(configpkg.Config{}).GetLevel())
	require.Equal(t, zerolog.TraceLevel, CreateLogger(configpkg.Config{Environment: "development"}).GetLevel())
}
