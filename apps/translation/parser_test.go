package translation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserMaskUnmaskRoundTrip(t *testing.T) {
	p := NewParser(0)

	cases := []string{
		"plain text without anything special",
		"check out https://example.com/docs?page=2 for details",
		"hey @alice did you see #release-notes",
		"run `go build ./...` before pushing",
		"```go\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n```\nthat is the fix",
		"mixed `inline` and https://example.com and @bob and #tag together",
	}
	for _, content := range cases {
		masked, segments, err := p.Mask(content)
		require.NoError(t, err)
		assert.Equal(t, content, Unmask(masked, segments))
	}
}

func TestParserMasksCodeBeforeURL(t *testing.T) {
	p := NewParser(0)
	content := "see `https://inner.example.com` and https://outer.example.com"

	masked, segments, err := p.Mask(content)
	require.NoError(t, err)
	require.Len(t, segments, 2)

	// The backticked span is claimed as inline code; the bare URL separately.
	assert.Equal(t, SegmentInlineCode, segments[0].Kind)
	assert.Equal(t, "`https://inner.example.com`", segments[0].Raw)
	assert.Equal(t, SegmentURL, segments[1].Kind)
	assert.NotContains(t, masked, "example.com")
}

func TestParserCodeFenceClaimsWholeBlock(t *testing.T) {
	p := NewParser(0)
	content := "before\n```python\nprint('hello @world #notag')\n```\nafter"

	masked, segments, err := p.Mask(content)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, SegmentCodeFence, segments[0].Kind)
	assert.Contains(t, masked, "⟪P0⟫")
	// Mention and hashtag inside the fence must not be masked separately.
	assert.NotContains(t, masked, "⟪P1⟫")
	assert.Equal(t, content, Unmask(masked, segments))
}

func TestParserLiteralPlaceholderMarker(t *testing.T) {
	p := NewParser(0)
	content := "someone typed ⟪P0⟫ by hand"

	masked, segments, err := p.Mask(content)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, SegmentPlaceholder, segments[0].Kind)
	assert.Equal(t, content, Unmask(masked, segments))
}

func TestParserValidate(t *testing.T) {
	t.Run("rejects oversized content", func(t *testing.T) {
		p := NewParser(10)
		violations := p.Validate(strings.Repeat("a", 11))
		require.Len(t, violations, 1)
		assert.Contains(t, violations[0], "exceeds")
	})

	t.Run("counts code points not bytes", func(t *testing.T) {
		p := NewParser(10)
		assert.Empty(t, p.Validate(strings.Repeat("é", 10)))
	})

	t.Run("rejects forbidden patterns", func(t *testing.T) {
		p := NewParser(0)
		for _, content := range []string{
			"<script>alert(1)</script>",
			"click javascript:alert(1)",
			"open data:text/html;base64,xxxx",
		} {
			assert.NotEmpty(t, p.Validate(content), "expected rejection for %q", content)
		}
	})

	t.Run("accepts normal markdown", func(t *testing.T) {
		p := NewParser(0)
		assert.Empty(t, p.Validate("**bold** and _italic_ and `code`"))
	})
}

func TestParserMaskReturnsContentError(t *testing.T) {
	p := NewParser(5)
	_, _, err := p.Mask("this is definitely too long")
	require.Error(t, err)
	var contentErr *ContentError
	require.ErrorAs(t, err, &contentErr)
	assert.NotEmpty(t, contentErr.Violations)
}

func TestStripMask(t *testing.T) {
	p := NewParser(0)
	masked, _, err := p.Mask("look at https://example.com now")
	require.NoError(t, err)

	stripped := StripMask(masked)
	assert.NotContains(t, stripped, "⟪")
	assert.Contains(t, stripped, "look at")

	t.Run("all protected content strips to empty", func(t *testing.T) {
		masked, _, err := p.Mask("https://example.com")
		require.NoError(t, err)
		assert.Equal(t, "", StripMask(masked))
	})
}
