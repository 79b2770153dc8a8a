package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware attaches permissive cross-origin headers to every response,
// error paths included, and short-circuits OPTIONS preflights before any
// identity resolution happens.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token,X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "GET,OPTIONS,POST,PUT,DELETE")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}
