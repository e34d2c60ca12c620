package middleware

import (
	"net/http"
	"strings"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/utils"
	"github.com/gin-gonic/gin"
)

// PosthogMiddleware records one analytics event per successful authenticated API call.
// The event name is derived from the route template, e.g. "/api/v1/funds/subscribe" -> "api_v1_funds_subscribe".
func PosthogMiddleware(analytics *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if analytics == nil || !analytics.IsInitialized() {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			return
		}
		eventName := strings.ReplaceAll(strings.TrimPrefix(c.FullPath(), "/"), "/", "_")
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"status_code": c.Writer.Status(),
		}
		for _, p := range c.Params {
			props["param_"+p.Key] = p.Value
		}
		analytics.Enqueue(userID, eventName, props)
	}
}
