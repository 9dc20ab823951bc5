package handlers

import (
	"omnichat/internal/app"
	"omnichat/internal/http/middleware"

	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all API routes
func SetupRoutes(api *echo.Group, services *app.Services) {
	// Platform webhook routes (no tenant headers; each platform carries its
	// own verification scheme)
	webhookHandler := NewWebhookHandler(services.Config, services.IntegrationRepo, services.PlatformService, services.Sender, services.Pool)
	api.POST("/integrations/discord/webhook", webhookHandler.Discord)
	api.POST("/integrations/slack/events", webhookHandler.Slack)
	api.POST("/integrations/telegram/:token/webhook", webhookHandler.Telegram)
	api.POST("/integrations/teams/webhook", webhookHandler.Teams)
	api.GET("/integrations/whatsapp/webhook", webhookHandler.WhatsAppVerify)
	api.POST("/integrations/whatsapp/webhook", webhookHandler.WhatsApp)

	// Protected routes (require tenant and actor headers)
	protected := api.Group("")
	protected.Use(middleware.TenantActor())

	// Chat and conversation routes
	chatHandler := NewChatHandler(services.ConversationRepo, services.MessageRepo, services.Orchestrator, services.EventRepo)
	protected.POST("/chat/completions", chatHandler.Complete)
	protected.POST("/conversations", chatHandler.CreateConversation)
	protected.GET("/conversations", chatHandler.ListConversations)
	protected.GET("/conversations/:id", chatHandler.GetConversation)
	protected.DELETE("/conversations/:id", chatHandler.ArchiveConversation)
	protected.POST("/conversations/:id/escalate", chatHandler.Escalate)

	// Tool routes
	toolHandler := NewToolHandler(services.ToolRepo, services.ToolService)
	protected.POST("/tools", toolHandler.Create)
	protected.GET("/tools", toolHandler.List)
	protected.PUT("/tools/:id", toolHandler.Update)
	protected.DELETE("/tools/:id", toolHandler.Delete)
	protected.POST("/tools/:id/test", toolHandler.Test)
	protected.POST("/tools/executions/:id/confirm", toolHandler.Confirm)

	// Memory routes
	memoryHandler := NewMemoryHandler(services.MemoryService)
	protected.GET("/memory", memoryHandler.List)
	protected.POST("/memory", memoryHandler.Upsert)
	protected.POST("/memory/consent", memoryHandler.SetConsent)
	protected.PUT("/memory/:id", memoryHandler.Update)
	protected.DELETE("/memory/:id", memoryHandler.Delete)
	protected.DELETE("/memory", memoryHandler.DeleteAll)

	// Knowledge routes
	knowledgeHandler := NewKnowledgeHandler(services.KnowledgeService)
	protected.POST("/knowledge/search", knowledgeHandler.Search)

	// Integration management routes
	integrationHandler := NewIntegrationHandler(services.IntegrationRepo)
	protected.GET("/integrations/manage", integrationHandler.List)
	protected.POST("/integrations/manage", integrationHandler.Create)
	protected.PATCH("/integrations/manage/:id", integrationHandler.Update)
	protected.DELETE("/integrations/manage/:id", integrationHandler.Delete)
}
