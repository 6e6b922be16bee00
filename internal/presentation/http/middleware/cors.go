package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SessionHeader carries the session token for clients that cannot set
// Authorization.
const SessionHeader = "X-ToneCanvas-Session"

// CORSMiddleware restricts cross-origin access to the configured front ends.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{
			"GET", "POST", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			"X-Requested-With", SessionHeader,
			"Cache-Control",
		},
		AllowCredentials: true,
		ExposeHeaders: []string{
			"Content-Type", "Content-Length", "Content-Disposition",
		},
		MaxAge: 12 * time.Hour,
	}

	return cors.New(config)
}
