package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
)

// ErrMissingCredential is returned when a provider has no usable API key.
var ErrMissingCredential = errors.New("API key not configured")

// Image is an encoded picture ready to be sent to a vision model.
type Image struct {
	Data     []byte
	MIMEType string
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL returns the image as a data: URL.
func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + i.Base64()
}

// VisionLLM sends one image plus an instruction prompt to a hosted model and
// returns its raw text reply.
type VisionLLM interface {
	Analyze(ctx context.Context, prompt string, img Image) (string, error)
	Name() string
	GetModel() string
}

var placeholders = map[string]bool{
	"YOUR_GEMINI_API_KEY_HERE": true,
	"YOUR_GEMINI_API_KEY":      true,
	"YOUR_OPENAI_API_KEY":      true,
	"YOUR_ANTHROPIC_API_KEY":   true,
	"CHANGEME":                 true,
	"CHANGE_ME":                true,
}

// IsPlaceholder reports whether key is empty or one of the template values
// shipped in example .env files.
func IsPlaceholder(key string) bool {
	k := strings.ToUpper(strings.TrimSpace(key))
	if k == "" || placeholders[k] {
		return true
	}
	return strings.HasPrefix(k, "YOUR_") && strings.HasSuffix(k, "_HERE")
}
