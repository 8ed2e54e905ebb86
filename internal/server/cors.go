package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/yt-content-manager/internal/conf"
)

const (
	corsAllowMethods = "DELETE, GET, HEAD, OPTIONS, PATCH, POST, PUT"
	corsMaxAge       = "600"
)

// CORS answers cross-origin requests from the configured origins only.
// Requests from other origins get no CORS headers, and their preflights
// are rejected.
func CORS(cfg conf.CORSConfig) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(cfg.AllowOrigins))
	allowAll := false
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		_, ok := allowed[origin]
		ok = ok || allowAll

		preflight := c.Request.Method == http.MethodOptions &&
			c.GetHeader("Access-Control-Request-Method") != ""

		if !preflight {
			if ok {
				setOriginHeaders(c, origin, cfg.AllowCredentials)
			}
			c.Next()
			return
		}

		if !ok {
			c.Header("Vary", "Origin")
			c.String(http.StatusBadRequest, "Disallowed CORS origin")
			c.Abort()
			return
		}

		setOriginHeaders(c, origin, cfg.AllowCredentials)
		c.Header("Access-Control-Allow-Methods", corsAllowMethods)
		if h := c.GetHeader("Access-Control-Request-Headers"); h != "" {
			c.Header("Access-Control-Allow-Headers", h)
		}
		c.Header("Access-Control-Max-Age", corsMaxAge)
		c.String(http.StatusOK, "OK")
		c.Abort()
	}
}

func setOriginHeaders(c *gin.Context, origin string, credentials bool) {
	c.Header("Access-Control-Allow-Origin", origin)
	if credentials {
		c.Header("Access-Control-Allow-Credentials", "true")
	}
	c.Writer.Header().Add("Vary", "Origin")
}
