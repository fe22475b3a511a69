package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	return NewDetector(nil)
}

func TestDetectShortTextFallsBackToEnglish(t *testing.T) {
	d := newTestDetector(t)

	for _, text := range []string{"", "ok", "hi", "👍"} {
		res := d.Detect(text)
		assert.Equal(t, "en", res.Language, "text %q", text)
		assert.Equal(t, 0.3, res.Confidence)
		assert.False(t, res.IsRomanized)
	}
}

func TestDetectByScript(t *testing.T) {
	d := newTestDetector(t)

	cases := []struct {
		text string
		lang string
	}{
		{"привет как дела у тебя сегодня", "ru"},
		{"你好我需要帮助谢谢你", "zh"},
		{"こんにちはありがとうございます", "ja"},
		{"안녕하세요 감사합니다 도움", "ko"},
		{"مرحبا أحتاج مساعدة من فضلك", "ar"},
		{"नमस्ते मुझे मदद चाहिए धन्यवाद", "hi"},
	}
	for _, tc := range cases {
		res := d.Detect(tc.text)
		assert.Equal(t, tc.lang, res.Language, "text %q", tc.text)
		assert.False(t, res.IsRomanized)
		assert.GreaterOrEqual(t, res.Confidence, 0.6, "text %q", tc.text)
	}
}

func TestDetectLatinLanguages(t *testing.T) {
	d := newTestDetector(t)

	cases := []struct {
		text string
		lang string
	}{
		{"what is the weather like today and can you help", "en"},
		{"hola necesito ayuda con esta función por favor gracias", "es"},
		{"bonjour j'ai besoin d'aide avec cette application merci", "fr"},
		{"hallo ich brauche hilfe mit dieser anwendung danke schön", "de"},
	}
	for _, tc := range cases {
		res := d.Detect(tc.text)
		assert.Equal(t, tc.lang, res.Language, "text %q", tc.text)
	}
}

func TestDetectRomanizedHindi(t *testing.T) {
	d := newTestDetector(t)

	res := d.Detect("muje aapki help chahiye yaar")
	assert.Equal(t, "hi", res.Language)
	assert.True(t, res.IsRomanized)
	assert.GreaterOrEqual(t, res.Confidence, 0.6)

	t.Run("hindi in devanagari is not romanized", func(t *testing.T) {
		res := d.Detect("नमस्ते मुझे मदद चाहिए")
		assert.Equal(t, "hi", res.Language)
		assert.False(t, res.IsRomanized)
	})

	t.Run("plain english is not flagged romanized", func(t *testing.T) {
		res := d.Detect("i will help you with that task tomorrow")
		assert.Equal(t, "en", res.Language)
		assert.False(t, res.IsRomanized)
	})
}

func TestDetectIgnoresPlaceholderTokens(t *testing.T) {
	d := newTestDetector(t)

	res := d.Detect("⟪P0⟫ hola necesito ayuda con esta función por favor ⟪P1⟫")
	assert.Equal(t, "es", res.Language)
}

func TestDetectMixed(t *testing.T) {
	d := newTestDetector(t)

	res := d.DetectMixed("what is the status of the deploy today. привет как дела у тебя сегодня.")
	require.Len(t, res.Segments, 2)
	assert.Equal(t, "en", res.Segments[0].Language)
	assert.Equal(t, "ru", res.Segments[1].Language)
	assert.Contains(t, []string{"en", "ru"}, res.Primary)

	t.Run("empty input defaults to english", func(t *testing.T) {
		res := d.DetectMixed("")
		assert.Equal(t, "en", res.Primary)
		assert.Empty(t, res.Segments)
	})
}

func TestIsUncertain(t *testing.T) {
	d := newTestDetector(t)

	assert.True(t, d.IsUncertain("ok"), "short text is uncertain")
	assert.False(t, d.IsUncertain("привет как дела у тебя сегодня"), "clear script signal is certain")
}

func TestDetectFallbacksExcludeWinner(t *testing.T) {
	d := newTestDetector(t)

	res := d.Detect("hola necesito ayuda con esta función por favor gracias")
	for _, fb := range res.Fallbacks {
		assert.NotEqual(t, res.Language, fb)
	}
	assert.LessOrEqual(t, len(res.Fallbacks), 3)
}
