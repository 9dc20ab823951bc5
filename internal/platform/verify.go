package platform

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// slackReplayWindow rejects Slack deliveries older than five minutes
const slackReplayWindow = 300

// VerifyDiscordSignature checks the Ed25519 signature Discord attaches to
// every interaction. The signed payload is the timestamp concatenated with
// the raw request body.
func VerifyDiscordSignature(publicKeyHex, signatureHex, timestamp string, rawBody []byte) bool {
	publicKey, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(publicKey) != ed25519.PublicKeySize {
		log.Warn().Err(err).Msg("Discord signature verification error")
		return false
	}
	signature, err := hex.DecodeString(signatureHex)
	if err != nil || len(signature) != ed25519.SignatureSize {
		log.Warn().Err(err).Msg("Discord signature verification error")
		return false
	}

	message := make([]byte, 0, len(timestamp)+len(rawBody))
	message = append(message, timestamp...)
	message = append(message, rawBody...)
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
}

// VerifySlackSignature checks the HMAC-SHA256 signature Slack computes over
// `v0:{timestamp}:{body}` with the app's signing secret. Deliveries outside
// the replay window fail regardless of signature.
func VerifySlackSignature(signingSecret, signature, timestamp string, rawBody []byte) bool {
	reqTime, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		log.Warn().Err(err).Msg("Slack signature verification error")
		return false
	}
	now := time.Now().Unix()
	if now-reqTime > slackReplayWindow || reqTime-now > slackReplayWindow {
		return false
	}

	mac := hmac.New(sha256.New, []byte(signingSecret))
	mac.Write([]byte(fmt.Sprintf("v0:%s:%s", timestamp, rawBody)))
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// VerifyTelegramToken compares the bot token from the webhook URL path
// against the configured one in constant time.
func VerifyTelegramToken(pathToken, configuredToken string) bool {
	if configuredToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pathToken), []byte(configuredToken)) == 1
}

// VerifyTeamsServiceURL checks that a Bot Framework activity originates
// from a Microsoft service host. This is weaker than token verification
// and accepted as such for the Teams channel.
func VerifyTeamsServiceURL(serviceURL string) bool {
	return strings.Contains(serviceURL, "botframework.com") ||
		strings.Contains(serviceURL, "azure.com")
}

// VerifyWhatsAppChallenge validates the Meta webhook subscription handshake
func VerifyWhatsAppChallenge(verifyToken, mode, token string) bool {
	if mode != "subscribe" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(verifyToken)) == 1
}
