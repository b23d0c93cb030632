package finance

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the projection endpoint
func RegisterRoutes(r *gin.Engine) {
	r.POST("/projection", projectionHandler)
}

func projectionHandler(c *gin.Context) {
	var form BusinessFormData
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": Project(form)})
}
