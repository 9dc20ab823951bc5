package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const discordMaxMessageLen = 2000

// Sender delivers outbound messages to platform APIs. Send failures are
// logged and not retried; the assistant message is already persisted, so a
// lost delivery only costs the user a reply on that channel.
type Sender struct {
	httpClient *http.Client

	telegramBaseURL string
	slackBaseURL    string
	graphBaseURL    string
	discordBaseURL  string
}

// NewSender creates a sender with production API endpoints
func NewSender() *Sender {
	return &Sender{
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		telegramBaseURL: "https://api.telegram.org",
		slackBaseURL:    "https://slack.com",
		graphBaseURL:    "https://graph.facebook.com",
		discordBaseURL:  "https://discord.com",
	}
}

// SendTelegram sends a Markdown message via the Telegram Bot API
func (s *Sender) SendTelegram(ctx context.Context, botToken, chatID, text string) {
	url := fmt.Sprintf("%s/bot%s/sendMessage", s.telegramBaseURL, botToken)
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if status, err := s.post(ctx, "POST", url, payload, ""); err != nil || status >= 300 {
		log.Warn().Err(err).Int("status", status).Msg("Telegram sendMessage failed")
	}
}

// PostSlack posts a message via the Slack Web API
func (s *Sender) PostSlack(ctx context.Context, botToken, channel, text string) {
	url := s.slackBaseURL + "/api/chat.postMessage"
	payload := map[string]interface{}{
		"channel": channel,
		"text":    text,
		"mrkdwn":  true,
	}
	if status, err := s.post(ctx, "POST", url, payload, botToken); err != nil || status >= 300 {
		log.Warn().Err(err).Int("status", status).Msg("Slack postMessage failed")
	}
}

// SendWhatsApp sends a text message via the Meta Cloud API
func (s *Sender) SendWhatsApp(ctx context.Context, accessToken, phoneNumberID, to, text string) {
	url := fmt.Sprintf("%s/v18.0/%s/messages", s.graphBaseURL, phoneNumberID)
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]interface{}{"body": text},
	}
	if status, err := s.post(ctx, "POST", url, payload, accessToken); err != nil || status >= 300 {
		log.Warn().Err(err).Int("status", status).Msg("WhatsApp sendMessage failed")
	}
}

// PatchDiscord edits the deferred interaction reply with the final content.
// Discord caps message content at 2000 characters.
func (s *Sender) PatchDiscord(ctx context.Context, applicationID, interactionToken, content string) {
	if len(content) > discordMaxMessageLen {
		content = content[:discordMaxMessageLen]
	}
	url := fmt.Sprintf("%s/api/v10/webhooks/%s/%s/messages/@original", s.discordBaseURL, applicationID, interactionToken)
	payload := map[string]interface{}{"content": content}
	if status, err := s.post(ctx, http.MethodPatch, url, payload, ""); err != nil || status >= 300 {
		log.Warn().Err(err).Int("status", status).Msg("Discord follow-up message failed")
	}
}

func (s *Sender) post(ctx context.Context, method, url string, payload map[string]interface{}, bearer string) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
