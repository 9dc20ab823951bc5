package platform

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method string
	path   string
	auth   string
	body   map[string]interface{}
}

func captureServer(t *testing.T, out *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out.method = r.Method
		out.path = r.URL.Path
		out.auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &out.body)
		w.WriteHeader(http.StatusOK)
	}))
}

func testSender(serverURL string) *Sender {
	return &Sender{
		httpClient:      &http.Client{Timeout: 2 * time.Second},
		telegramBaseURL: serverURL,
		slackBaseURL:    serverURL,
		graphBaseURL:    serverURL,
		discordBaseURL:  serverURL,
	}
}

func TestSendTelegram(t *testing.T) {
	var captured capturedRequest
	server := captureServer(t, &captured)
	defer server.Close()

	testSender(server.URL).SendTelegram(context.Background(), "123:abc", "42", "hello *world*")

	assert.Equal(t, "POST", captured.method)
	assert.Equal(t, "/bot123:abc/sendMessage", captured.path)
	assert.Equal(t, "42", captured.body["chat_id"])
	assert.Equal(t, "hello *world*", captured.body["text"])
	assert.Equal(t, "Markdown", captured.body["parse_mode"])
}

func TestPostSlack(t *testing.T) {
	var captured capturedRequest
	server := captureServer(t, &captured)
	defer server.Close()

	testSender(server.URL).PostSlack(context.Background(), "xoxb-token", "C12345", "answer")

	assert.Equal(t, "/api/chat.postMessage", captured.path)
	assert.Equal(t, "Bearer xoxb-token", captured.auth)
	assert.Equal(t, "C12345", captured.body["channel"])
	assert.Equal(t, true, captured.body["mrkdwn"])
}

func TestSendWhatsApp(t *testing.T) {
	var captured capturedRequest
	server := captureServer(t, &captured)
	defer server.Close()

	testSender(server.URL).SendWhatsApp(context.Background(), "token", "15550001111", "5511999990000", "oi")

	assert.Equal(t, "/v18.0/15550001111/messages", captured.path)
	assert.Equal(t, "Bearer token", captured.auth)
	assert.Equal(t, "whatsapp", captured.body["messaging_product"])
	assert.Equal(t, "5511999990000", captured.body["to"])

	text, ok := captured.body["text"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "oi", text["body"])
}

func TestPatchDiscordTruncatesContent(t *testing.T) {
	var captured capturedRequest
	server := captureServer(t, &captured)
	defer server.Close()

	long := strings.Repeat("a", 2500)
	testSender(server.URL).PatchDiscord(context.Background(), "app-id", "interaction-token", long)

	assert.Equal(t, http.MethodPatch, captured.method)
	assert.Equal(t, "/api/v10/webhooks/app-id/interaction-token/messages/@original", captured.path)

	content, ok := captured.body["content"].(string)
	require.True(t, ok)
	assert.Len(t, content, discordMaxMessageLen)
}
