package router

import (
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/pocketledger/backend/internal/models"
)

// URLMiddleware makes the base URL of the instance available to the
// controllers so they can generate links.
func URLMiddleware(url *url.URL) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(models.DBContextURL), url.String())
		c.Next()
	}
}
