package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/talentscout/talentscout-api/pkg/jwt"
)

// ConversationContextKey is the key used to store the conversation id in context
const ConversationContextKey = "conversation_id"

var (
	ErrConversationNotInContext = errors.New("conversation id not found in context")
)

// ConversationSessionMiddleware validates the Bearer conversation token and
// stores the conversation id it authorizes in the request context. The token
// is the only credential: whoever holds it owns the conversation.
func ConversationSessionMiddleware(tokenManager *jwt.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			_ = c.Error(fmt.Errorf("missing bearer token")) //nolint:errcheck
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		claims, err := tokenManager.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			_ = c.Error(fmt.Errorf("invalid conversation token: %w", err)) //nolint:errcheck
			if errors.Is(err, jwt.ErrExpiredToken) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			}
			c.Abort()
			return
		}

		c.Set(ConversationContextKey, claims.ConversationID)
		c.Next()
	}
}

// GetConversationID extracts the authorized conversation id from context
func GetConversationID(c *gin.Context) (string, error) {
	val, exists := c.Get(ConversationContextKey)
	if !exists {
		return "", ErrConversationNotInContext
	}

	id, ok := val.(string)
	if !ok || id == "" {
		return "", ErrConversationNotInContext
	}

	return id, nil
}
