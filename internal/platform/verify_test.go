package platform

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signDiscord(t *testing.T, priv ed25519.PrivateKey, timestamp string, body []byte) string {
	t.Helper()
	message := append([]byte(timestamp), body...)
	return hex.EncodeToString(ed25519.Sign(priv, message))
}

func TestVerifyDiscordSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	pubHex := hex.EncodeToString(pub)
	body := []byte(`{"type":1}`)
	timestamp := "1700000000"

	sig := signDiscord(t, priv, timestamp, body)
	assert.True(t, VerifyDiscordSignature(pubHex, sig, timestamp, body))

	// tampered body
	assert.False(t, VerifyDiscordSignature(pubHex, sig, timestamp, []byte(`{"type":2}`)))

	// wrong timestamp
	assert.False(t, VerifyDiscordSignature(pubHex, sig, "1700000001", body))

	// malformed inputs
	assert.False(t, VerifyDiscordSignature("not-hex", sig, timestamp, body))
	assert.False(t, VerifyDiscordSignature(pubHex, "not-hex", timestamp, body))
	assert.False(t, VerifyDiscordSignature(hex.EncodeToString([]byte("short")), sig, timestamp, body))
}

func slackSign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySlackSignature(t *testing.T) {
	secret := "8f742231b10e8888abcd99yyyzzz85a5"
	body := []byte(`{"type":"event_callback"}`)
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	sig := slackSign(secret, timestamp, body)
	assert.True(t, VerifySlackSignature(secret, sig, timestamp, body))

	// tampered body
	assert.False(t, VerifySlackSignature(secret, sig, timestamp, []byte(`{}`)))

	// wrong secret
	assert.False(t, VerifySlackSignature("other", sig, timestamp, body))

	// non-numeric timestamp
	assert.False(t, VerifySlackSignature(secret, sig, "yesterday", body))
}

func TestVerifySlackSignatureRejectsReplay(t *testing.T) {
	secret := "secret"
	body := []byte(`{}`)
	stale := strconv.FormatInt(time.Now().Unix()-600, 10)

	sig := slackSign(secret, stale, body)
	assert.False(t, VerifySlackSignature(secret, sig, stale, body))
}

func TestVerifyTelegramToken(t *testing.T) {
	assert.True(t, VerifyTelegramToken("123:abc", "123:abc"))
	assert.False(t, VerifyTelegramToken("123:abc", "123:xyz"))
	assert.False(t, VerifyTelegramToken("123:abc", ""))
	assert.False(t, VerifyTelegramToken("", "123:abc"))
}

func TestVerifyTeamsServiceURL(t *testing.T) {
	assert.True(t, VerifyTeamsServiceURL("https://smba.trafficmanager.net.botframework.com/amer/"))
	assert.True(t, VerifyTeamsServiceURL("https://bots.azure.com/"))
	assert.False(t, VerifyTeamsServiceURL("https://evil.example.com/"))
	assert.False(t, VerifyTeamsServiceURL(""))
}

func TestVerifyWhatsAppChallenge(t *testing.T) {
	assert.True(t, VerifyWhatsAppChallenge("mytoken", "subscribe", "mytoken"))
	assert.False(t, VerifyWhatsAppChallenge("mytoken", "unsubscribe", "mytoken"))
	assert.False(t, VerifyWhatsAppChallenge("mytoken", "subscribe", "other"))
}
