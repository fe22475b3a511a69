package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlossaryProtectRestoreRoundTrip(t *testing.T) {
	g := DefaultGlossary()

	text := "the GitHub API uses JSON over HTTPS"
	masked, matches := g.Protect(text)

	assert.NotContains(t, masked, "GitHub")
	assert.NotContains(t, masked, "JSON")
	assert.NotContains(t, masked, "HTTPS")
	assert.Equal(t, text, RestoreGlossary(masked, matches))
}

func TestGlossaryLongestTermWins(t *testing.T) {
	g := DefaultGlossary()

	masked, matches := g.Protect("the GitHub API is great but the API alone too")
	require.Len(t, matches, 2)
	assert.Equal(t, "GitHub API", matches[0].Term)
	assert.Equal(t, "API", matches[1].Term)
	assert.NotContains(t, masked, "GitHub")
}

func TestGlossaryPreservesSurfaceCase(t *testing.T) {
	g := NewGlossary([]string{"FlowTalk"})

	masked, matches := g.Protect("flowtalk is great, FLOWTALK forever")
	require.Len(t, matches, 2)
	assert.Equal(t, "flowtalk", matches[0].Surface)
	assert.Equal(t, "FLOWTALK", matches[1].Surface)

	restored := RestoreGlossary(masked, matches)
	assert.Equal(t, "flowtalk is great, FLOWTALK forever", restored)
}

func TestGlossaryWholeWordOnly(t *testing.T) {
	g := NewGlossary([]string{"Go"})

	masked, matches := g.Protect("Good Google Go going")
	// Only the standalone "Go" is a whole-word match.
	require.Len(t, matches, 1)
	assert.Equal(t, "Go", matches[0].Surface)
	assert.Contains(t, masked, "Good")
	assert.Contains(t, masked, "Google")
	assert.Contains(t, masked, "going")
}

func TestGlossaryMerge(t *testing.T) {
	base := NewGlossary([]string{"API", "Redis"})
	merged := base.Merge([]string{"TeamRocket", "api"})

	terms := merged.Terms()
	assert.Contains(t, terms, "TeamRocket")
	assert.Contains(t, terms, "Redis")
	// Community spelling wins the case-insensitive collision.
	assert.Contains(t, terms, "api")
	assert.NotContains(t, terms, "API")

	t.Run("merge does not mutate the base", func(t *testing.T) {
		assert.Contains(t, base.Terms(), "API")
		assert.NotContains(t, base.Terms(), "TeamRocket")
	})
}

func TestGlossaryDeduplicatesAndSkipsEmpty(t *testing.T) {
	g := NewGlossary([]string{"API", "api", "  ", "", "SDK"})
	assert.Len(t, g.Terms(), 2)
}
