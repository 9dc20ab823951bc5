package safety

import (
	"regexp"

	"github.com/rs/zerolog/log"
)

// CheckResult is the outcome of screening one piece of content
type CheckResult struct {
	Safe            bool            `json:"safe"`
	Flags           map[string]bool `json:"flags"`
	RedactedContent string          `json:"redacted_content,omitempty"`
	Reason          string          `json:"reason,omitempty"`
}

var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)system\s*prompt`),
	regexp.MustCompile(`(?i)jailbreak`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+DAN`),
	regexp.MustCompile(`(?i)forget\s+your\s+(instructions|training)`),
}

var disallowedTopics = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(how\s+to\s+make\s+a\s+bomb|weapons\s+manufacturing)\b`),
	regexp.MustCompile(`(?i)\bself.?harm\b`),
	regexp.MustCompile(`(?i)\billegal\s+drugs\b`),
}

// piiPattern pairs a detection regexp with its redaction marker. Each
// category targets a disjoint token shape, so application order does not
// change the result.
type piiPattern struct {
	name        string
	pattern     *regexp.Regexp
	replacement string
}

var piiPatterns = []piiPattern{
	{"ssn", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "[SSN REDACTED]"},
	{"credit_card", regexp.MustCompile(`\b(?:\d{4}[- ]?){3}\d{4}\b`), "[CARD REDACTED]"},
	{"email", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[EMAIL REDACTED]"},
	{"phone", regexp.MustCompile(`\b(?:\+1[-.]?)?\(?\d{3}\)?[-.]?\d{3}[-.]?\d{4}\b`), "[PHONE REDACTED]"},
}

func newFlags() map[string]bool {
	return map[string]bool{"injection": false, "pii": false, "dlp": false, "toxicity": false}
}

// CheckInput screens user-supplied content before any model work happens.
// PII is flagged but never blocks input; injection and disallowed topics do.
func CheckInput(content string) CheckResult {
	flags := newFlags()

	for _, p := range injectionPatterns {
		if p.MatchString(content) {
			flags["injection"] = true
			preview := content
			if len(preview) > 100 {
				preview = preview[:100]
			}
			log.Warn().Str("content", preview).Msg("Injection attempt detected")
			break
		}
	}

	for _, p := range disallowedTopics {
		if p.MatchString(content) {
			flags["toxicity"] = true
			break
		}
	}

	for _, p := range piiPatterns {
		if p.pattern.MatchString(content) {
			flags["pii"] = true
			break
		}
	}

	result := CheckResult{
		Safe:  !flags["injection"] && !flags["toxicity"],
		Flags: flags,
	}
	switch {
	case flags["injection"]:
		result.Reason = "Prompt injection detected"
	case flags["toxicity"]:
		result.Reason = "Disallowed topic detected"
	}
	return result
}

// RedactPII substitutes fixed markers for every PII match in content
func RedactPII(content string) string {
	redacted := content
	for _, p := range piiPatterns {
		redacted = p.pattern.ReplaceAllString(redacted, p.replacement)
	}
	return redacted
}

// CheckOutput screens model output. It never blocks; it only flags and
// redacts PII so the caller can substitute the cleaned content.
func CheckOutput(content string) CheckResult {
	flags := newFlags()
	redacted := content

	for _, p := range piiPatterns {
		if p.pattern.MatchString(content) {
			flags["pii"] = true
			break
		}
	}
	if flags["pii"] {
		redacted = RedactPII(content)
	}

	return CheckResult{Safe: true, Flags: flags, RedactedContent: redacted}
}
