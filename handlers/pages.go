package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Index(c *gin.Context) {
	render(c, http.StatusOK, "index.html", nil)
}

// readiness is implemented by engines that can report failed artifact loads.
type readiness interface {
	Ready() bool
}

func Health(engine DelayPredictor) gin.HandlerFunc {
	return func(c *gin.Context) {
		modelReady := true
		if r, ok := engine.(readiness); ok {
			modelReady = r.Ready()
		}
		c.JSON(http.StatusOK, gin.H{
			"status":      "UP",
			"message":     "Flight Delay Predictor is running",
			"model_ready": modelReady,
		})
	}
}
