package routes

import (
	"github.com/gin-gonic/gin"

	"molliebridge/internal/interfaces/http/handlers"
)

// GatewayRouteConfig holds dependencies for gateway routes.
type GatewayRouteConfig struct {
	WebhookHandler    *handlers.WebhookHandler
	InvoicePayHandler *handlers.InvoicePayHandler
	AdminHandler      *handlers.AdminHandler
}

// SetupGatewayRoutes configures the gateway routes.
func SetupGatewayRoutes(engine *gin.Engine, cfg *GatewayRouteConfig) {
	engine.POST("/gateway/mollierecurring/webhook", cfg.WebhookHandler.HandleWebhook)

	invoices := engine.Group("/invoices")
	{
		invoices.GET("/:id/pay", cfg.InvoicePayHandler.ShowPayPage)
		invoices.POST("/:id/pay", cfg.InvoicePayHandler.SubmitPayNow)
	}

	admin := engine.Group("/admin")
	{
		admin.GET("/invoices/:id/status-message", cfg.AdminHandler.StatusMessage)
		admin.POST("/invoices/:id/capture", cfg.AdminHandler.Capture)
		admin.POST("/refunds", cfg.AdminHandler.Refund)
	}
}
