package api

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the card API under /api.
func RegisterRoutes(r *gin.Engine, s *Server) {
	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.POST("/card/render", s.renderCard)
		api.POST("/card/idea", s.renderIdea)
		api.GET("/qr", s.qr)
	}
}
