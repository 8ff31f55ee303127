package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "deeptrust-api/internal/transport/http/response"
)

type Allower interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Throttle limits attempts per client IP under a named scope. Backend errors
// let the request through; the route's own checks still apply.
func Throttle(a Allower, scope string, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := a.Allow(c.Request.Context(), scope+":"+c.ClientIP())
		if err != nil {
			l.Warn("throttle unavailable", zap.String("scope", scope), zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, resp.Error(resp.CodeTooManyRequests, ""))
			return
		}
		c.Next()
	}
}
