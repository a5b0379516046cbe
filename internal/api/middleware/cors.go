package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// CORSConfig controls the headers the upload page and other browser clients need.
type CORSConfig struct {
	AllowOrigins  []string
	AllowMethods  []string
	AllowHeaders  []string
	ExposeHeaders []string
	MaxAge        int
}

// DefaultCORSConfig allows any origin to call the transcription API.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Accept", "Content-Type", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader, "Content-Disposition"},
		MaxAge:        3600,
	}
}

// CORS sets the access control headers and answers preflight requests with 204.
func CORS(config CORSConfig) gin.HandlerFunc {
	anyOrigin := lo.Contains(config.AllowOrigins, "*")
	static := map[string]string{
		"Access-Control-Allow-Methods":  strings.Join(config.AllowMethods, ", "),
		"Access-Control-Allow-Headers":  strings.Join(config.AllowHeaders, ", "),
		"Access-Control-Expose-Headers": strings.Join(config.ExposeHeaders, ", "),
	}
	if config.MaxAge > 0 {
		static["Access-Control-Max-Age"] = strconv.Itoa(config.MaxAge)
	}

	return func(c *gin.Context) {
		switch origin := c.GetHeader("Origin"); {
		case anyOrigin:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && lo.Contains(config.AllowOrigins, origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		for k, v := range static {
			if v != "" {
				c.Header(k, v)
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
