package api

import (
	"github.com/gin-gonic/gin"
)

type Handler struct {
	routes Routes
}

func NewHandler(routes Routes) *Handler {
	return &Handler{routes: routes}
}

// Engine builds the gin engine with CORS and every route mounted.
func (h *Handler) Engine() *gin.Engine {
	r := gin.Default()

	r.Use(corsMiddleware())

	SetupRoutes(r, h.routes)

	return r
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	return h.Engine().Run(addr)
}

// corsMiddleware answers preflights for the dashboard. Routes that register
// their own OPTIONS handler get to answer it themselves.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" && c.FullPath() == "" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
