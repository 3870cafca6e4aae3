package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RedisRateLimit implements a fixed-window limiter per client IP using
// INCR/EXPIRE. key format: rl:<window_seconds>:<ip>. A nil client or a redis
// error lets the request through.
func RedisRateLimit(client *redis.Client, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		limitByKey(c, client, key, c.FullPath(), maxRequests, window)
	}
}

// PlayerRateLimit limits actions per player rather than per IP. It must run
// after JWT.
func PlayerRateLimit(client *redis.Client, maxActions int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := PlayerID(c)
		if playerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		key := "player_rl:" + playerID + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		limitByKey(c, client, key, "player:"+c.FullPath(), maxActions, window)
	}
}

func limitByKey(c *gin.Context, client *redis.Client, key, endpoint string, maxRequests int, window time.Duration) {
	if client == nil {
		c.Next()
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
	defer cancel()

	val, err := client.Incr(ctx, key).Result()
	if err != nil {
		c.Header("X-RateLimit-Error", "redis-error")
		c.Next()
		return
	}
	if val == 1 {
		client.Expire(ctx, key, window)
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

	if val > int64(maxRequests) {
		RLBlocked.WithLabelValues(endpoint).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": int(window.Seconds()),
		})
		return
	}

	RLRequests.WithLabelValues(endpoint).Inc()
	c.Next()
}
