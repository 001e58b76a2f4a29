package routermiddlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	tokengate "github.com/trailhead-labs/go-token-gate"
)

// Gin middleware for adding bearer token validation into the request pipeline.
// The gate is constructed once by the caller and shared across requests.
func Gin(g *tokengate.TokenGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := g.ValidateBearerToken(c.Request)
		if err != nil {
			status := tokengate.StatusForError(err)
			c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status)})
			return
		}
		c.Request = c.Request.WithContext(tokengate.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}
