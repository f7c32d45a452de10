package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Located writes payload with a Location header pointing at the resource it describes.
func Located(c *gin.Context, status int, location string, payload interface{}) {
	if location != "" {
		c.Header("Location", location)
	}
	c.JSON(status, payload)
}

// NoContent ends the request with 204 and an empty body.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
	c.Writer.WriteHeaderNow()
}
