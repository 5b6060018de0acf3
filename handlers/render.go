package handlers

import (
	"github.com/vishalmadargaon/Flight-delay-predictor/middleware"

	"github.com/gin-gonic/gin"
)

// render executes a page template with the session user and pending flashes.
func render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, username, ok := middleware.CurrentUser(c); ok {
		data["Username"] = username
	}
	data["Flashes"] = consumeFlashes(c)
	c.HTML(status, page, data)
}
