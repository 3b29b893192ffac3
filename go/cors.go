package plantnetserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// DefaultCORSHeaders are the request headers the dashboards send.
var DefaultCORSHeaders = []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With"}

// CORS allows credentialed requests from the listed dashboard origins.
// Extra request headers are allowed on top of DefaultCORSHeaders.
// Cross-origin requests from any other origin are refused with 403.
func CORS(origins, extraHeaders []string) gin.HandlerFunc {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	headers := append([]string{}, DefaultCORSHeaders...)
	for _, h := range extraHeaders {
		if h = strings.TrimSpace(h); h != "" {
			headers = append(headers, h)
		}
	}
	return cors.New(cors.Config{
		AllowOrigins: allowed,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:     headers,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
