package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, apiKeyMiddleware gin.HandlerFunc) {
	group := g.Group("")

	// === API key protected routes ===
	group.Use(apiKeyMiddleware)
	{
		group.POST("/availability", h.Find)
		group.POST("/checks", h.Check)
	}
}
