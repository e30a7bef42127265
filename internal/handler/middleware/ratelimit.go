package middleware

import (
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/time/rate"

	"github.com/yokitheyo/styletransfer/internal/dto"
)

// RateLimitMiddleware queues requests behind a token bucket of perSecond
// tokens. A request whose context ends while waiting gets 429. A
// non-positive perSecond disables the limit.
func RateLimitMiddleware(perSecond, burst int) ginext.HandlerFunc {
	if perSecond <= 0 {
		return func(c *ginext.Context) {
			c.Next()
		}
	}

	if burst <= 0 {
		burst = perSecond
	}

	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)

	return func(c *ginext.Context) {
		if err := limiter.Wait(c.Request.Context()); err != nil {
			zlog.Logger.Warn().
				Err(err).
				Str("path", c.Request.URL.Path).
				Msg("rate limit wait aborted")

			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "rate_limited",
				Message: "Too many style transfer requests, try again later",
			})
			return
		}

		c.Next()
	}
}
