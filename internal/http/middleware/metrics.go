package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mealcycle-backend/internal/http/response"
	"github.com/yungbote/mealcycle-backend/internal/observability"
)

// Metrics records request counts and latency per route template, plus the
// meal error code of every failed response.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
		if code := errorCode(c); code != "" {
			m.IncAPIError(route, code)
		}
	}
}

// errorCode is the code set by response.RespondError, or "".
func errorCode(c *gin.Context) string {
	return c.GetString(response.ErrorCodeKey)
}
