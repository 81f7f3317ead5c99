package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nftpulse/notifier/internal/logger"
)

// AUTH_HEADER carries the webhook shared secret
const AUTH_HEADER = "Authorization"

// WebhookAuth returns a gin middleware enforcing a shared-secret header.
// The comparison is constant-time and happens before the body is read,
// so an unauthenticated caller learns nothing about payload handling.
func WebhookAuth(sharedSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sharedSecret == "" {
			logger.Warn("Webhook shared secret not configured, rejecting request",
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}

		provided := c.GetHeader(AUTH_HEADER)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(sharedSecret)) != 1 {
			logger.Warn("Webhook authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}

		c.Next()
	}
}
