package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/parking-spot-reservation/internal/config"
)

// bodyRecorder tees the response body so a successful status payload
// can be stored after the handler has streamed it to the client.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
}

func (w *bodyRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.size += int64(len(b))
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// statusCacheKey derives the Redis key for a status request.  Day
// status varies only by its :date parameter and week status not at
// all, so route plus date is the entire key space; no query string or
// hashing is involved.
func statusCacheKey(prefix string, c echo.Context) string {
	key := prefix + ":" + c.Path()
	if d := c.Param("date"); d != "" {
		key += ":" + d
	}
	return key
}

// NewRedisCache caches status endpoint bodies in Redis for a short
// TTL.  Day and week status are identical for every authenticated
// user and go stale the moment a spot changes hands, so the cache
// exists only to absorb the read burst right after the booking window
// opens.  Entries hold the JSON body verbatim; only 200 responses to
// GET are stored.  With Redis down the middleware is a pass-through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	maxBody := int64(cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := statusCacheKey(cfg.Prefix, c)

			if body, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSONBlob(http.StatusOK, body)
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if rec.status == http.StatusOK && (maxBody <= 0 || rec.size <= maxBody) {
				// Stored after the response is sent; the request
				// context may already be done.
				_ = rdb.SetEx(context.Background(), key, rec.buf.Bytes(), ttl).Err()
			}
			return nil
		}
	}
}
