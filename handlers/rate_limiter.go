package handlers

import (
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// 投票接口限流配置
var (
	rateLimitEnabled bool
	voteRate         rate.Limit = 5
	voteBurst                   = 10

	voteLimiters   = make(map[string]*rate.Limiter)
	voteLimitersMu sync.Mutex
)

// InitRateLimiters 从环境变量读取限流配置
func InitRateLimiters() {
	rateLimitEnabled = os.Getenv("ENABLE_RATE_LIMIT") == "true"

	if rateStr := os.Getenv("VOTE_RATE_LIMIT"); rateStr != "" {
		if r, err := strconv.Atoi(rateStr); err == nil && r > 0 {
			voteRate = rate.Limit(r)
			voteBurst = r * 2
		}
	}
}

// limiterForIP 获取或创建某IP的令牌桶
func limiterForIP(ip string) *rate.Limiter {
	voteLimitersMu.Lock()
	defer voteLimitersMu.Unlock()

	limiter, ok := voteLimiters[ip]
	if !ok {
		limiter = rate.NewLimiter(voteRate, voteBurst)
		voteLimiters[ip] = limiter
	}
	return limiter
}

// VoteRateLimitMiddleware 公开投票接口的按IP限流中间件
//
// This throttles abusive clients only; it is not duplicate-vote
// prevention, which kiosk voting deliberately omits.
func VoteRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rateLimitEnabled {
			c.Next()
			return
		}

		if !limiterForIP(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests, please try again later",
			})
			return
		}

		c.Next()
	}
}
