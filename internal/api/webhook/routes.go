package webhook

import (
	"github.com/gin-gonic/gin"

	"github.com/nftpulse/notifier/internal/api/middleware"
)

// SetupRoutes registers the webhook and health endpoints. The sale
// webhook sits behind shared-secret auth; the chain webhook provider
// does not sign deliveries, so that endpoint relies on payload
// validation alone.
func SetupRoutes(router *gin.Engine, handler *Handler, solanaSharedSecret string) {
	router.GET("/health", handler.HandleHealth)

	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/chain", handler.HandleChainWebhook)
		webhooks.POST("/solana", middleware.WebhookAuth(solanaSharedSecret), handler.HandleSolanaWebhook)
	}
}
