package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const corsMaxAge = "600"

// corsMiddleware lets the browser frontend call the API from the configured origins.
// An empty list or a "*" entry allows any origin; unknown origins get no allow header.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	anyOrigin := len(allowed) == 0
	origins := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		origin = strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
		if origin == "*" {
			anyOrigin = true
			continue
		}
		if origin != "" {
			origins[origin] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		headers := c.Writer.Header()
		if allowOrigin := resolveOrigin(c.GetHeader("Origin"), anyOrigin, origins); allowOrigin != "" {
			headers.Set("Access-Control-Allow-Origin", allowOrigin)
			headers.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			headers.Set("Access-Control-Allow-Headers", "Content-Type, Accept, Cache-Control")
		}
		if !anyOrigin {
			headers.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			headers.Set("Access-Control-Max-Age", corsMaxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func resolveOrigin(requestOrigin string, anyOrigin bool, origins map[string]struct{}) string {
	if anyOrigin {
		return "*"
	}
	if requestOrigin == "" {
		return ""
	}
	if _, ok := origins[strings.ToLower(requestOrigin)]; ok {
		return requestOrigin
	}
	return ""
}
