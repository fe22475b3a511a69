package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/getevo/evo/v2/lib/log"
)

// ErrTranslationFailed marks a per-target translation failure after all
// retries were exhausted. The orchestrator records it against the target
// without fabricating a translation.
var ErrTranslationFailed = errors.New("translation failed")

// Translator turns text from one language into another. Implementations
// must return the input verbatim when source and target match or the text is
// whitespace-only.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

const (
	defaultCallTimeout = 10 * time.Second
	defaultMaxAttempts = 3
	defaultBackoff     = time.Second
)

// HTTPTranslator calls an external translation service speaking an
// OpenAI-compatible chat completion API. Each call has a hard deadline and
// is retried with exponential backoff.
type HTTPTranslator struct {
	apiKey      string
	baseURL     string
	model       string
	httpClient  *http.Client
	callTimeout time.Duration
	maxAttempts int
	backoff     time.Duration
}

// NewHTTPTranslator builds the adapter. Empty baseURL and model fall back
// to the OpenAI defaults, matching the provider agreement.
func NewHTTPTranslator(apiKey, baseURL, model string) *HTTPTranslator {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &HTTPTranslator{
		apiKey:      apiKey,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		model:       model,
		httpClient:  &http.Client{},
		callTimeout: defaultCallTimeout,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

const translatorSystemPrompt = "You are a native bilingual translator for chat messages. " +
	"Translations must sound completely natural - as if originally written in the target language. " +
	"Never translate word-by-word. Only output the translation, nothing else."

// Translate sends text to the external service. Placeholder tokens of the
// form ⟪P0⟫ or ⟪G0⟫ must come back unchanged; the prompt instructs the
// provider accordingly.
func (t *HTTPTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if sourceLang == targetLang || strings.TrimSpace(text) == "" {
		return text, nil
	}
	if t.apiKey == "" {
		return "", fmt.Errorf("%w: translator API key is not configured", ErrTranslationFailed)
	}

	prompt := fmt.Sprintf(`Translate this chat message from %s to %s.

Rules:
- Translate naturally, like a native speaker would say it - NOT word-by-word
- Keep the same tone (formal/informal)
- Preserve emojis, formatting, and line breaks
- Tokens like ⟪P0⟫ or ⟪G1⟫ are placeholders: copy them to the output exactly as they are, in the position that reads naturally
- Only output the translation, nothing else

Text: %s`, LanguageName(sourceLang), LanguageName(targetLang), text)

	body := chatCompletionRequest{
		Model: t.model,
		Messages: []chatMessage{
			{Role: "system", Content: translatorSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   2000,
		Temperature: 0.3,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}

	var lastErr error
	backoff := t.backoff
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrTranslationFailed, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		out, err := t.call(ctx, payload)
		if err == nil {
			return out, nil
		}
		lastErr = err
		log.Warning("translator attempt %d/%d for %s->%s failed: %v", attempt, t.maxAttempts, sourceLang, targetLang, err)
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("%w: %v", ErrTranslationFailed, lastErr)
}

func (t *HTTPTranslator) call(ctx context.Context, payload []byte) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, t.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translator returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var parsed chatCompletionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode translator response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("translator error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("translator returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
