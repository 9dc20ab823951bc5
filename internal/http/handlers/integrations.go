package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"

	"omnichat/internal/config"
	"omnichat/internal/platform"
	"omnichat/internal/worker"
	"omnichat/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const apologyReply = "⚠️ Sorry, I ran into an error. Please try again."

var teamsMentionPattern = regexp.MustCompile(`<at>[^<]*</at>`)

type integrationStore interface {
	GetEnabledByTenantAndPlatform(tenantID uuid.UUID, platform string) (*models.Integration, error)
	GetByIDAndTenant(id, tenantID uuid.UUID) (*models.Integration, error)
	ListByTenant(tenantID uuid.UUID) ([]models.Integration, error)
	Create(integration *models.Integration) error
	Update(integration *models.Integration) error
	Delete(id, tenantID uuid.UUID) error
}

type platformService interface {
	ProcessMessage(ctx context.Context, req platform.MessageRequest) (*platform.Reply, error)
	LogEvent(integrationID, tenantID uuid.UUID, platformName, eventType string, payload map[string]interface{}, processingErr error)
}

type outboundSender interface {
	SendTelegram(ctx context.Context, botToken, chatID, text string)
	PostSlack(ctx context.Context, botToken, channel, text string)
	SendWhatsApp(ctx context.Context, accessToken, phoneNumberID, to, text string)
	PatchDiscord(ctx context.Context, applicationID, interactionToken, content string)
}

type taskPool interface {
	Submit(task worker.Task) error
}

// WebhookHandler terminates inbound platform webhooks. Fast paths (signature
// check, platform ack) run inline; message processing is handed to the
// worker pool so platform ack deadlines are never missed.
type WebhookHandler struct {
	cfg          *config.Config
	integrations integrationStore
	service      platformService
	sender       outboundSender
	pool         taskPool
}

func NewWebhookHandler(cfg *config.Config, integrations integrationStore, service platformService, sender outboundSender, pool taskPool) *WebhookHandler {
	return &WebhookHandler{
		cfg:          cfg,
		integrations: integrations,
		service:      service,
		sender:       sender,
		pool:         pool,
	}
}

func correlationID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok {
		return id
	}
	return uuid.New().String()
}

// findIntegration looks up the enabled integration row for a platform's
// configured tenant. Returns nils when the tenant ID is unset or the row
// is missing; callers log and drop the delivery.
func (h *WebhookHandler) findIntegration(platformName, tenantIDStr string) (*models.Integration, uuid.UUID) {
	if tenantIDStr == "" {
		log.Error().Str("platform", platformName).Msg("Integration tenant ID not configured")
		return nil, uuid.Nil
	}
	tenantID, err := uuid.Parse(tenantIDStr)
	if err != nil {
		log.Error().Str("platform", platformName).Msg("Integration tenant ID is not a UUID")
		return nil, uuid.Nil
	}
	integration, err := h.integrations.GetEnabledByTenantAndPlatform(tenantID, platformName)
	if err != nil {
		log.Warn().Str("platform", platformName).Str("tenant_id", tenantIDStr).Msg("Integration not found")
		return nil, uuid.Nil
	}
	return integration, tenantID
}

// discordInteraction is the subset of the interaction payload we consume
type discordInteraction struct {
	Type      int    `json:"type"`
	Token     string `json:"token"`
	ChannelID string `json:"channel_id"`
	Data      struct {
		Options []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"options"`
	} `json:"data"`
	Member *struct {
		User *discordUser `json:"user"`
	} `json:"member"`
	User *discordUser `json:"user"`
}

type discordUser struct {
	ID       json.Number `json:"id"`
	Username string      `json:"username"`
}

// Discord handles POST /integrations/discord/webhook
func (h *WebhookHandler) Discord(c echo.Context) error {
	signature := c.Request().Header.Get("X-Signature-Ed25519")
	timestamp := c.Request().Header.Get("X-Signature-Timestamp")
	if signature == "" || timestamp == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing Discord signature headers"})
	}

	if h.cfg.Discord.PublicKey == "" {
		log.Error().Msg("DISCORD_PUBLIC_KEY is not configured")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Discord integration not configured"})
	}

	rawBody, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if !platform.VerifyDiscordSignature(h.cfg.Discord.PublicKey, signature, timestamp, rawBody) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid request signature"})
	}

	var interaction discordInteraction
	if err := json.Unmarshal(rawBody, &interaction); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid interaction payload"})
	}

	// PING health check during webhook registration
	if interaction.Type == 1 {
		return c.JSON(http.StatusOK, map[string]int{"type": 1})
	}

	if interaction.Type != 2 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unsupported interaction type"})
	}

	user := interaction.User
	if interaction.Member != nil && interaction.Member.User != nil {
		user = interaction.Member.User
	}

	var content string
	for _, opt := range interaction.Data.Options {
		if opt.Name == "message" {
			content = opt.Value
			break
		}
	}

	channelID := interaction.ChannelID
	if channelID == "" {
		channelID = "global"
	}

	if user != nil && strings.TrimSpace(content) != "" {
		h.dispatchDiscord(c, interaction, user, content, channelID)
	}

	// Deferred ack: the real reply is PATCHed onto the interaction later
	return c.JSON(http.StatusOK, map[string]int{"type": 5})
}

func (h *WebhookHandler) dispatchDiscord(c echo.Context, interaction discordInteraction, user *discordUser, content, channelID string) {
	corrID := correlationID(c)
	task := worker.Task{CorrelationID: corrID, Run: func(ctx context.Context) error {
		integration, tenantID := h.findIntegration(models.PlatformDiscord, h.cfg.Discord.TenantID)
		if integration == nil {
			return nil
		}

		reply, err := h.service.ProcessMessage(ctx, platform.MessageRequest{
			IntegrationID:  integration.ID,
			TenantID:       tenantID,
			Platform:       models.PlatformDiscord,
			ExternalUserID: user.ID.String(),
			ExternalConvID: channelID,
			Content:        content,
			DisplayName:    user.Username,
		})
		payload := map[string]interface{}{"user_id": user.ID.String(), "channel": channelID}
		if err != nil {
			log.Error().Err(err).Str("correlation_id", corrID).Msg("Discord slash command processing failed")
			h.sender.PatchDiscord(ctx, h.cfg.Discord.ApplicationID, interaction.Token, apologyReply)
			h.service.LogEvent(integration.ID, tenantID, models.PlatformDiscord, "slash_command", payload, err)
			return nil
		}

		h.sender.PatchDiscord(ctx, h.cfg.Discord.ApplicationID, interaction.Token, reply.Content)
		h.service.LogEvent(integration.ID, tenantID, models.PlatformDiscord, "slash_command", payload, nil)
		return nil
	}}
	if err := h.pool.Submit(task); err != nil {
		log.Warn().Str("correlation_id", corrID).Msg("Discord task dropped")
	}
}

type slackEnvelope struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Event     struct {
		Type     string `json:"type"`
		User     string `json:"user"`
		Text     string `json:"text"`
		Channel  string `json:"channel"`
		ThreadTS string `json:"thread_ts"`
		BotID    string `json:"bot_id"`
		Subtype  string `json:"subtype"`
	} `json:"event"`
}

// Slack handles POST /integrations/slack/events
func (h *WebhookHandler) Slack(c echo.Context) error {
	signature := c.Request().Header.Get("X-Slack-Signature")
	timestamp := c.Request().Header.Get("X-Slack-Request-Timestamp")
	if signature == "" || timestamp == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing Slack signature headers"})
	}

	rawBody, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if h.cfg.Slack.SigningSecret != "" &&
		!platform.VerifySlackSignature(h.cfg.Slack.SigningSecret, signature, timestamp, rawBody) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid Slack signature"})
	}

	var body slackEnvelope
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid event payload"})
	}

	// Request URL verification handshake
	if body.Type == "url_verification" {
		return c.JSON(http.StatusOK, map[string]string{"challenge": body.Challenge})
	}

	event := body.Event
	if body.Type == "event_callback" && event.Type == "message" && event.BotID == "" && event.Subtype == "" {
		h.dispatchSlack(c, event.User, event.Text, event.Channel, event.ThreadTS)
	}

	// Slack requires a 200 within 3 seconds
	return c.NoContent(http.StatusOK)
}

func (h *WebhookHandler) dispatchSlack(c echo.Context, user, text, channel, threadTS string) {
	corrID := correlationID(c)
	task := worker.Task{CorrelationID: corrID, Run: func(ctx context.Context) error {
		integration, tenantID := h.findIntegration(models.PlatformSlack, h.cfg.Slack.TenantID)
		if integration == nil {
			return nil
		}

		botToken := h.cfg.Slack.BotToken
		if t, ok := integration.Config["bot_token"].(string); ok && t != "" {
			botToken = t
		}

		convID := threadTS
		if convID == "" {
			convID = channel
		}

		reply, err := h.service.ProcessMessage(ctx, platform.MessageRequest{
			IntegrationID:  integration.ID,
			TenantID:       tenantID,
			Platform:       models.PlatformSlack,
			ExternalUserID: user,
			ExternalConvID: convID,
			Content:        text,
		})
		payload := map[string]interface{}{"user": user, "channel": channel}
		if err != nil {
			log.Error().Err(err).Str("correlation_id", corrID).Msg("Slack event processing failed")
			h.sender.PostSlack(ctx, botToken, channel, apologyReply)
			h.service.LogEvent(integration.ID, tenantID, models.PlatformSlack, "message", payload, err)
			return nil
		}

		h.sender.PostSlack(ctx, botToken, channel, reply.Content)
		h.service.LogEvent(integration.ID, tenantID, models.PlatformSlack, "message", payload, nil)
		return nil
	}}
	if err := h.pool.Submit(task); err != nil {
		log.Warn().Str("correlation_id", corrID).Msg("Slack task dropped")
	}
}

type telegramUpdate struct {
	Message *struct {
		Text string `json:"text"`
		Chat struct {
			ID json.Number `json:"id"`
		} `json:"chat"`
		From *struct {
			ID        json.Number `json:"id"`
			FirstName string      `json:"first_name"`
			LastName  string      `json:"last_name"`
			Username  string      `json:"username"`
		} `json:"from"`
	} `json:"message"`
}

const (
	telegramWelcome = "👋 *Welcome!*\n\nSend me any message and I'll respond with AI-powered answers.\n\nType /help for more information."
	telegramHelp    = "🤖 *AI Assistant*\n\n• Simply type any question or message\n• I have access to your knowledge base\n• I can execute tools and actions\n\n*Commands:*\n/start - Start the bot\n/help - Show this help\n/clear - Reset conversation"
	telegramCleared = "🗑 Conversation cleared. Start fresh with your next message!"
)

// Telegram handles POST /integrations/telegram/:token/webhook. The bot
// token in the path acts as the shared secret.
func (h *WebhookHandler) Telegram(c echo.Context) error {
	token := c.Param("token")
	if !platform.VerifyTelegramToken(token, h.cfg.Telegram.BotToken) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
	}

	var update telegramUpdate
	if err := c.Bind(&update); err != nil || update.Message == nil || update.Message.Text == "" {
		return c.NoContent(http.StatusOK)
	}

	msg := update.Message
	chatID := msg.Chat.ID.String()
	corrID := correlationID(c)

	// Built-in commands bypass orchestration
	if canned := telegramCannedReply(msg.Text); canned != "" {
		task := worker.Task{CorrelationID: corrID, Run: func(ctx context.Context) error {
			h.sender.SendTelegram(ctx, token, chatID, canned)
			return nil
		}}
		if err := h.pool.Submit(task); err != nil {
			log.Warn().Str("correlation_id", corrID).Msg("Telegram task dropped")
		}
		return c.NoContent(http.StatusOK)
	}

	userID := "unknown"
	var displayName string
	if msg.From != nil {
		userID = msg.From.ID.String()
		displayName = strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
		if displayName == "" {
			displayName = msg.From.Username
		}
	}
	text := msg.Text

	task := worker.Task{CorrelationID: corrID, Run: func(ctx context.Context) error {
		integration, tenantID := h.findIntegration(models.PlatformTelegram, h.cfg.Telegram.TenantID)
		if integration == nil {
			return nil
		}

		reply, err := h.service.ProcessMessage(ctx, platform.MessageRequest{
			IntegrationID:  integration.ID,
			TenantID:       tenantID,
			Platform:       models.PlatformTelegram,
			ExternalUserID: userID,
			ExternalConvID: chatID,
			Content:        text,
			DisplayName:    displayName,
		})
		payload := map[string]interface{}{"user_id": userID, "chat_id": chatID}
		if err != nil {
			log.Error().Err(err).Str("correlation_id", corrID).Msg("Telegram message processing failed")
			h.sender.SendTelegram(ctx, token, chatID, apologyReply)
			h.service.LogEvent(integration.ID, tenantID, models.PlatformTelegram, "message", payload, err)
			return nil
		}

		h.sender.SendTelegram(ctx, token, chatID, reply.Content)
		h.service.LogEvent(integration.ID, tenantID, models.PlatformTelegram, "message", payload, nil)
		return nil
	}}
	if err := h.pool.Submit(task); err != nil {
		log.Warn().Str("correlation_id", corrID).Msg("Telegram task dropped")
	}

	return c.NoContent(http.StatusOK)
}

func telegramCannedReply(text string) string {
	switch text {
	case "/start":
		return telegramWelcome
	case "/help":
		return telegramHelp
	case "/clear":
		return telegramCleared
	default:
		return ""
	}
}

type teamsActivity struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Text       string `json:"text"`
	ServiceURL string `json:"serviceUrl"`
	From       *struct {
		ID          string `json:"id"`
		AADObjectID string `json:"aadObjectId"`
		Name        string `json:"name"`
	} `json:"from"`
	Conversation *struct {
		ID string `json:"id"`
	} `json:"conversation"`
}

// Teams handles POST /integrations/teams/webhook. Bot Framework expects the
// reply Activity inline, so processing stays synchronous here.
func (h *WebhookHandler) Teams(c echo.Context) error {
	var activity teamsActivity
	if err := c.Bind(&activity); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid activity payload"})
	}

	if !platform.VerifyTeamsServiceURL(activity.ServiceURL) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unrecognised service URL"})
	}

	if activity.Type != "message" {
		return c.JSON(http.StatusOK, map[string]string{"type": "message", "text": ""})
	}

	text := strings.TrimSpace(teamsMentionPattern.ReplaceAllString(activity.Text, ""))
	if text == "" {
		return c.JSON(http.StatusOK, map[string]string{"type": "message", "text": ""})
	}

	integration, tenantID := h.findIntegration(models.PlatformTeams, h.cfg.Teams.TenantID)
	if integration == nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Teams integration not configured"})
	}

	externalUserID := "unknown"
	var displayName string
	if activity.From != nil {
		if activity.From.AADObjectID != "" {
			externalUserID = activity.From.AADObjectID
		} else if activity.From.ID != "" {
			externalUserID = activity.From.ID
		}
		displayName = activity.From.Name
	}
	convID := externalUserID
	if activity.Conversation != nil && activity.Conversation.ID != "" {
		convID = activity.Conversation.ID
	}

	reply, err := h.service.ProcessMessage(c.Request().Context(), platform.MessageRequest{
		IntegrationID:  integration.ID,
		TenantID:       tenantID,
		Platform:       models.PlatformTeams,
		ExternalUserID: externalUserID,
		ExternalConvID: convID,
		Content:        text,
		DisplayName:    displayName,
	})
	payload := map[string]interface{}{"user_id": externalUserID, "conv_id": convID}
	if err != nil {
		log.Error().Err(err).Msg("Teams message processing failed")
		h.service.LogEvent(integration.ID, tenantID, models.PlatformTeams, "message", payload, err)
		return c.JSON(http.StatusOK, map[string]string{"type": "message", "text": apologyReply})
	}

	h.service.LogEvent(integration.ID, tenantID, models.PlatformTeams, "message", payload, nil)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"type":      "message",
		"text":      reply.Content,
		"replyToId": activity.ID,
	})
}

// WhatsAppVerify handles GET /integrations/whatsapp/webhook, the Meta
// subscription handshake
func (h *WebhookHandler) WhatsAppVerify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	if platform.VerifyWhatsAppChallenge(h.cfg.WhatsApp.VerifyToken, mode, token) {
		return c.String(http.StatusOK, challenge)
	}
	return c.JSON(http.StatusForbidden, map[string]string{"error": "Verification failed"})
}

type whatsAppNotification struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// WhatsApp handles POST /integrations/whatsapp/webhook. Meta retries unless
// it gets a 200, so the ack always wins.
func (h *WebhookHandler) WhatsApp(c echo.Context) error {
	var body whatsAppNotification
	if err := c.Bind(&body); err != nil || body.Object != "whatsapp_business_account" {
		return c.String(http.StatusOK, "EVENT_RECEIVED")
	}

	corrID := correlationID(c)
	for _, entry := range body.Entry {
		for _, change := range entry.Changes {
			for _, message := range change.Value.Messages {
				if message.Type != "text" || strings.TrimSpace(message.Text.Body) == "" {
					continue
				}
				h.dispatchWhatsApp(corrID, message.From, message.Text.Body)
			}
		}
	}

	return c.String(http.StatusOK, "EVENT_RECEIVED")
}

func (h *WebhookHandler) dispatchWhatsApp(corrID, from, text string) {
	task := worker.Task{CorrelationID: corrID, Run: func(ctx context.Context) error {
		integration, tenantID := h.findIntegration(models.PlatformWhatsApp, h.cfg.WhatsApp.TenantID)
		if integration == nil {
			return nil
		}

		accessToken := h.cfg.WhatsApp.AccessToken
		if t, ok := integration.Config["access_token"].(string); ok && t != "" {
			accessToken = t
		}
		phoneNumberID := h.cfg.WhatsApp.PhoneNumberID
		if p, ok := integration.Config["phone_number_id"].(string); ok && p != "" {
			phoneNumberID = p
		}

		reply, err := h.service.ProcessMessage(ctx, platform.MessageRequest{
			IntegrationID:  integration.ID,
			TenantID:       tenantID,
			Platform:       models.PlatformWhatsApp,
			ExternalUserID: from,
			ExternalConvID: from,
			Content:        text,
		})
		payload := map[string]interface{}{"from": from}
		if err != nil {
			log.Error().Err(err).Str("correlation_id", corrID).Msg("WhatsApp message processing failed")
			h.sender.SendWhatsApp(ctx, accessToken, phoneNumberID, from, apologyReply)
			h.service.LogEvent(integration.ID, tenantID, models.PlatformWhatsApp, "message", payload, err)
			return nil
		}

		h.sender.SendWhatsApp(ctx, accessToken, phoneNumberID, from, reply.Content)
		h.service.LogEvent(integration.ID, tenantID, models.PlatformWhatsApp, "message", payload, nil)
		return nil
	}}
	if err := h.pool.Submit(task); err != nil {
		log.Warn().Str("correlation_id", corrID).Msg("WhatsApp task dropped")
	}
}

// IntegrationHandler manages per-tenant integration configs
type IntegrationHandler struct {
	integrations integrationStore
}

func NewIntegrationHandler(integrations integrationStore) *IntegrationHandler {
	return &IntegrationHandler{integrations: integrations}
}

// List handles GET /integrations/manage
func (h *IntegrationHandler) List(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)

	list, err := h.integrations.ListByTenant(tenantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list integrations"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"integrations": list})
}

// CreateIntegrationRequest is the request body for POST /integrations/manage
type CreateIntegrationRequest struct {
	Platform  string         `json:"platform" validate:"required,oneof=discord slack telegram teams whatsapp"`
	Name      string         `json:"name" validate:"required,max=255"`
	Config    models.JSONMap `json:"config,omitempty"`
	BotUserID *uuid.UUID     `json:"bot_user_id,omitempty"`
}

// Create handles POST /integrations/manage
func (h *IntegrationHandler) Create(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)

	var req CreateIntegrationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if req.Config == nil {
		req.Config = models.JSONMap{}
	}

	integration := &models.Integration{
		BaseTenantModel: models.BaseTenantModel{TenantID: tenantID},
		Platform:        req.Platform,
		Name:            req.Name,
		Config:          req.Config,
		BotUserID:       req.BotUserID,
		Enabled:         true,
	}
	if err := h.integrations.Create(integration); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create integration"})
	}
	return c.JSON(http.StatusCreated, integration)
}

// UpdateIntegrationRequest is the request body for PATCH /integrations/manage/:id
type UpdateIntegrationRequest struct {
	Name    *string         `json:"name,omitempty" validate:"omitempty,max=255"`
	Config  *models.JSONMap `json:"config,omitempty"`
	Enabled *bool           `json:"enabled,omitempty"`
}

// Update handles PATCH /integrations/manage/:id
func (h *IntegrationHandler) Update(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid integration ID"})
	}

	var req UpdateIntegrationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	integration, err := h.integrations.GetByIDAndTenant(id, tenantID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "integration not found"})
	}

	if req.Name != nil {
		integration.Name = *req.Name
	}
	if req.Config != nil {
		integration.Config = *req.Config
	}
	if req.Enabled != nil {
		integration.Enabled = *req.Enabled
	}

	if err := h.integrations.Update(integration); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update integration"})
	}
	return c.JSON(http.StatusOK, integration)
}

// Delete handles DELETE /integrations/manage/:id
func (h *IntegrationHandler) Delete(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid integration ID"})
	}

	if err := h.integrations.Delete(id, tenantID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "integration not found"})
	}
	return c.NoContent(http.StatusNoContent)
}
