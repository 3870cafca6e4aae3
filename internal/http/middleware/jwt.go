package middleware

import (
	"net/http"
	"strings"

	"battleship/internal/service"

	"github.com/gin-gonic/gin"
)

const PlayerIDKey = "player_id"

// JWT requires a valid player token and stores its player id in the context.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		playerID, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(PlayerIDKey, playerID)
		c.Next()
	}
}

// OptionalJWT accepts anonymous requests but rejects a token that is present
// and invalid.
func OptionalJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		playerID, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(PlayerIDKey, playerID)
		c.Next()
	}
}

// bearerToken reads the Authorization header, falling back to the token
// query parameter used by EventSource and websocket clients.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
		return ""
	}
	return c.Query("token")
}

// PlayerID returns the player id set by JWT or OptionalJWT.
func PlayerID(c *gin.Context) string {
	return c.GetString(PlayerIDKey)
}
