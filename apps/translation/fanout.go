package translation

import "sort"

// MemberSnapshot is the membership/language-preference view captured at the
// moment a message is translated. Later preference changes only affect
// future messages.
type MemberSnapshot struct {
	UserID          string
	PrimaryLanguage string
}

// ResolveTargets enumerates the distinct target languages for a message:
// the primary languages of the members minus the message's source language.
// For a DM thread the members are the two participants. The result is
// sorted for determinism.
func ResolveTargets(members []MemberSnapshot, sourceLanguage string) []string {
	source := NormalizeLanguage(sourceLanguage)
	seen := make(map[string]struct{}, len(members))
	var targets []string
	for _, m := range members {
		lang := NormalizeLanguage(m.PrimaryLanguage)
		if lang == "" || lang == source {
			continue
		}
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		targets = append(targets, lang)
	}
	sort.Strings(targets)
	return targets
}
