package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"student-records/pkg/redis"
	"student-records/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件。
// scope 区分不同的限流桶（如 "login"、"sync"）；已认证请求按用户名计数，否则按客户端 IP。
// rdb 为 nil 或 Redis 出错时降级放行（与 JWTAuth 策略一致）。
func RateLimit(rdb *redis.Client, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		subject := c.GetString(CtxUsername)
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), "rate_limit:"+scope+":"+subject, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
