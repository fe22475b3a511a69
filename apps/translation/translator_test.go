package translation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionBody(content string) string {
	resp := chatCompletionResponse{}
	resp.Choices = append(resp.Choices, struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	}{Message: chatMessage{Role: "assistant", Content: content}})
	data, _ := json.Marshal(resp)
	return string(data)
}

func newTestTranslator(serverURL string) *HTTPTranslator {
	tr := NewHTTPTranslator("test-key", serverURL, "test-model")
	tr.backoff = time.Millisecond
	tr.callTimeout = time.Second
	return tr
}

func TestHTTPTranslatorVerbatimShortcuts(t *testing.T) {
	tr := NewHTTPTranslator("", "http://unreachable.invalid", "")

	out, err := tr.Translate(context.Background(), "hello", "en", "en")
	require.NoError(t, err)
	assert.Equal(t, "hello", out, "same source and target is returned verbatim")

	out, err = tr.Translate(context.Background(), "   \n\t ", "en", "es")
	require.NoError(t, err)
	assert.Equal(t, "   \n\t ", out, "whitespace-only is returned verbatim")
}

func TestHTTPTranslatorMissingKey(t *testing.T) {
	tr := NewHTTPTranslator("", "http://unreachable.invalid", "")
	_, err := tr.Translate(context.Background(), "hello", "en", "es")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTranslationFailed)
}

func TestHTTPTranslatorSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "hola mundo")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody("hello world")))
	}))
	defer server.Close()

	tr := newTestTranslator(server.URL)
	out, err := tr.Translate(context.Background(), "hola mundo", "es", "en")
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)
}

func TestHTTPTranslatorRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(completionBody("bonjour")))
	}))
	defer server.Close()

	tr := newTestTranslator(server.URL)
	out, err := tr.Translate(context.Background(), "hello", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "bonjour", out)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPTranslatorExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tr := newTestTranslator(server.URL)
	_, err := tr.Translate(context.Background(), "hello", "en", "fr")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTranslationFailed)
	assert.Equal(t, int32(defaultMaxAttempts), calls.Load())
}

func TestHTTPTranslatorProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	tr := newTestTranslator(server.URL)
	_, err := tr.Translate(context.Background(), "hello", "en", "fr")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTranslationFailed)
}

func TestPhraseTableTranslator(t *testing.T) {
	tr := PhraseTableTranslator{}

	t.Run("verbatim shortcuts", func(t *testing.T) {
		out, err := tr.Translate(context.Background(), "hello", "en", "en")
		require.NoError(t, err)
		assert.Equal(t, "hello", out)

		out, err = tr.Translate(context.Background(), "  ", "en", "es")
		require.NoError(t, err)
		assert.Equal(t, "  ", out)
	})

	t.Run("table hit", func(t *testing.T) {
		out, err := tr.Translate(context.Background(), "Hello", "en", "es")
		require.NoError(t, err)
		assert.Equal(t, "hola", out)

		out, err = tr.Translate(context.Background(), "thank you", "en", "ja")
		require.NoError(t, err)
		assert.Equal(t, "ありがとう", out)
	})

	t.Run("table miss tags the original", func(t *testing.T) {
		out, err := tr.Translate(context.Background(), "the deployment finished", "en", "es")
		require.NoError(t, err)
		assert.Equal(t, "[es] the deployment finished", out)
	})
}
