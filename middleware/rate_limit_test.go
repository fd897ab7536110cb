package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"

	"github.com/trustimonials/trustimonials-backend/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.IsTest = true
}

func setupRateLimitedRouter(limiter gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.POST("/s/:spaceId/submissions", limiter, func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	return r
}

func TestSubmissionRateLimiter(t *testing.T) {
	window := time.Minute

	t.Run("allows requests under the limit", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectTxPipeline()
		mock.ExpectIncr("ratelimit:submit:1.2.3.4:s-1").SetVal(1)
		mock.ExpectExpire("ratelimit:submit:1.2.3.4:s-1", window).SetVal(true)
		mock.ExpectTxPipelineExec()

		r := setupRateLimitedRouter(SubmissionRateLimiter(client, "spaceId", 5, window))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/s/s-1/submissions", nil)
		req.Header.Set("X-Forwarded-For", "1.2.3.4")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects requests over the limit", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectTxPipeline()
		mock.ExpectIncr("ratelimit:submit:1.2.3.4:s-1").SetVal(6)
		mock.ExpectExpire("ratelimit:submit:1.2.3.4:s-1", window).SetVal(true)
		mock.ExpectTxPipelineExec()
		mock.ExpectTTL("ratelimit:submit:1.2.3.4:s-1").SetVal(30 * time.Second)

		r := setupRateLimitedRouter(SubmissionRateLimiter(client, "spaceId", 5, window))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/s/s-1/submissions", nil)
		req.Header.Set("X-Forwarded-For", "1.2.3.4")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "30", w.Header().Get("Retry-After"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis failure does not block the request", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectTxPipeline()
		mock.ExpectIncr("ratelimit:submit:1.2.3.4:s-1").SetErr(assert.AnError)

		r := setupRateLimitedRouter(SubmissionRateLimiter(client, "spaceId", 5, window))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/s/s-1/submissions", nil)
		req.Header.Set("X-Forwarded-For", "1.2.3.4")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("different spaces use separate buckets", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectTxPipeline()
		mock.ExpectIncr("ratelimit:submit:1.2.3.4:s-2").SetVal(1)
		mock.ExpectExpire("ratelimit:submit:1.2.3.4:s-2", window).SetVal(true)
		mock.ExpectTxPipelineExec()

		r := setupRateLimitedRouter(SubmissionRateLimiter(client, "spaceId", 5, window))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/s/s-2/submissions", nil)
		req.Header.Set("X-Forwarded-For", "1.2.3.4")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
