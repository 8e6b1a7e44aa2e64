package middleware

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// CORS allows the frontend origin. During bring-up we allow everything;
// set FRONTEND_ORIGIN to tighten.
func CORS() gin.HandlerFunc {
	opts := cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}
	if origin := os.Getenv("FRONTEND_ORIGIN"); origin != "" && origin != "*" {
		opts.AllowedOrigins = []string{origin}
		opts.AllowCredentials = true
	}
	co := cors.New(opts)

	return func(c *gin.Context) {
		co.HandlerFunc(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions &&
			c.GetHeader("Access-Control-Request-Method") != "" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
