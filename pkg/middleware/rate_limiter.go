package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimiter limits requests per client IP. The rate uses limiter's
// formatted notation, e.g. "30-M" for 30 per minute.
func RateLimiter(rate string) (gin.HandlerFunc, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	return mgin.NewMiddleware(limiter.New(memory.NewStore(), r)), nil
}
