package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/anyoshi/bingo-live/controllers"
)

func SetupRoutes(r *gin.Engine, gc *controllers.GameController) {
	api := r.Group("/api")

	// ----------------------
	// Game state
	// ----------------------
	api.GET("/state", gc.GetState)
	api.GET("/cards/progress", gc.CardProgress)

	// ----------------------
	// Intents
	// ----------------------
	api.POST("/draw", gc.Draw)
	api.POST("/auto-draw/toggle", gc.ToggleAutoDraw)
	api.POST("/cards", gc.RegisterCard)
	api.PUT("/config", gc.ChangeConfiguration)
	api.POST("/reset", gc.Reset)
}
