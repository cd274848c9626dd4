package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const HeaderAPIKey = "X-API-Key"

// APIKeyRequired is a Gin middleware that checks the X-API-Key header against a bcrypt hash.
// An empty hash rejects every request.
func APIKeyRequired(hasher KeyHasher, keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderAPIKey)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + HeaderAPIKey + " header",
			})
			return
		}

		if keyHash == "" || hasher.Compare(keyHash, key) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid API key",
			})
			return
		}

		c.Next()
	}
}
