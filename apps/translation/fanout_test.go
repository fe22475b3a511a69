package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTargets(t *testing.T) {
	members := []MemberSnapshot{
		{UserID: "u1", PrimaryLanguage: "es"},
		{UserID: "u2", PrimaryLanguage: "FR"},
		{UserID: "u3", PrimaryLanguage: "es"},
		{UserID: "u4", PrimaryLanguage: "en"},
		{UserID: "u5", PrimaryLanguage: ""},
	}

	targets := ResolveTargets(members, "en")
	assert.Equal(t, []string{"es", "fr"}, targets, "deduplicated, normalized, source excluded, sorted")
}

func TestResolveTargetsDMThread(t *testing.T) {
	members := []MemberSnapshot{
		{UserID: "sender", PrimaryLanguage: "en"},
		{UserID: "peer", PrimaryLanguage: "ja"},
	}
	assert.Equal(t, []string{"ja"}, ResolveTargets(members, "en"))
}

func TestResolveTargetsEveryoneSharesSourceLanguage(t *testing.T) {
	members := []MemberSnapshot{
		{UserID: "u1", PrimaryLanguage: "en"},
		{UserID: "u2", PrimaryLanguage: "EN"},
	}
	assert.Empty(t, ResolveTargets(members, "en"))
}

func TestResolveTargetsNoMembers(t *testing.T) {
	assert.Empty(t, ResolveTargets(nil, "en"))
}
