package middleware

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	rateWindow        = time.Minute
	rateWindowSeconds = int64(rateWindow / time.Second)
)

// RateLimit counts requests per client IP and route in fixed one-minute
// windows kept in Redis. A nil client disables limiting, and Redis errors
// let the request through.
func RateLimit(rdb *redis.Client, requestsPerMinute int) gin.HandlerFunc {
	if rdb == nil || requestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		now := time.Now().Unix()
		window := now / rateWindowSeconds
		key := "brotodesk:ratelimit:" + c.ClientIP() + ":" + c.FullPath() + ":" + strconv.FormatInt(window, 10)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()

		var incr *redis.IntCmd
		_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, rateWindow)
			return nil
		})
		if err != nil {
			log.Printf("[ratelimit] redis error for key=%s: %v", key, err)
			c.Next()
			return
		}

		count := incr.Val()
		remaining := int64(requestsPerMinute) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(requestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(requestsPerMinute) {
			c.Header("Retry-After", strconv.FormatInt(rateWindowSeconds-now%rateWindowSeconds, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
