package translation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Glossary term categories.
const (
	GlossaryCategoryTechnical  = "technical"
	GlossaryCategoryBrand      = "brand"
	GlossaryCategoryProperNoun = "proper_noun"
	GlossaryCategoryCustom     = "custom"
)

// GlossaryMatch records one protected occurrence: the canonical term and the
// surface form actually found in the text. Restore puts the surface form
// back, so the original casing survives translation.
type GlossaryMatch struct {
	Term    string `json:"term"`
	Surface string `json:"surface"`
}

// Glossary holds the terms kept verbatim through translation, ordered
// longest first so that "GitHub API" wins over "API".
type Glossary struct {
	terms    []string
	matchers []*regexp.Regexp
}

// defaultGlossaryTerms ships with the pipeline: technology acronyms, brands,
// frameworks and programming language names.
var defaultGlossaryTerms = []string{
	"API", "REST", "GraphQL", "SQL", "NoSQL", "HTML", "CSS", "JSON", "YAML",
	"XML", "HTTP", "HTTPS", "TCP", "UDP", "DNS", "SSH", "TLS", "SSL", "JWT",
	"OAuth", "SDK", "CLI", "IDE", "CI", "CD", "URL", "URI", "UUID", "CPU",
	"GPU", "RAM",
	"GitHub", "GitHub API", "GitLab", "Bitbucket", "Docker", "Kubernetes",
	"Terraform", "Ansible", "Jenkins", "AWS", "Azure", "Google Cloud",
	"FlowTalk", "Slack", "Discord", "Telegram", "WhatsApp", "Zoom",
	"Redis", "MySQL", "PostgreSQL", "MongoDB", "SQLite", "Elasticsearch",
	"Kafka", "NATS", "RabbitMQ", "gRPC", "WebSocket", "GraphQL",
	"React", "Vue", "Angular", "Svelte", "Django", "Flask", "Rails",
	"Spring", "Laravel", "Express",
	"Go", "Golang", "Python", "JavaScript", "TypeScript", "Rust", "Java",
	"Kotlin", "Swift", "Ruby", "PHP", "Scala", "Haskell", "Erlang", "Elixir",
	"Linux", "Ubuntu", "Debian", "Windows", "macOS", "iOS", "Android",
}

// NewGlossary builds a glossary from terms, deduplicating case-insensitively
// and sorting longest first.
func NewGlossary(terms []string) *Glossary {
	seen := make(map[string]struct{}, len(terms))
	var unique []string
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, t)
	}
	sort.SliceStable(unique, func(i, j int) bool { return len(unique[i]) > len(unique[j]) })

	g := &Glossary{terms: unique}
	for _, t := range unique {
		g.matchers = append(g.matchers, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(t)+`\b`))
	}
	return g
}

// DefaultGlossary returns the bundled glossary.
func DefaultGlossary() *Glossary {
	return NewGlossary(defaultGlossaryTerms)
}

// Merge returns a new glossary with extra terms layered above the receiver.
// On case-insensitive equality the extra (community) term wins.
func (g *Glossary) Merge(extra []string) *Glossary {
	combined := make([]string, 0, len(extra)+len(g.terms))
	combined = append(combined, extra...)
	combined = append(combined, g.terms...)
	return NewGlossary(combined)
}

// Terms returns the glossary terms, longest first.
func (g *Glossary) Terms() []string {
	out := make([]string, len(g.terms))
	copy(out, g.terms)
	return out
}

// Protect replaces each whole-word occurrence of a glossary term with an
// opaque token ⟪G{j}⟫ and returns the masked text with the ordered matches.
func (g *Glossary) Protect(text string) (string, []GlossaryMatch) {
	var matches []GlossaryMatch
	masked := text
	for i, re := range g.matchers {
		term := g.terms[i]
		masked = re.ReplaceAllStringFunc(masked, func(surface string) string {
			token := glossaryToken(len(matches))
			matches = append(matches, GlossaryMatch{Term: term, Surface: surface})
			return token
		})
	}
	return masked, matches
}

// RestoreGlossary replaces the ⟪G{j}⟫ tokens in a translated string with
// the original surface forms.
func RestoreGlossary(masked string, matches []GlossaryMatch) string {
	out := masked
	for j, m := range matches {
		out = strings.Replace(out, glossaryToken(j), m.Surface, 1)
	}
	return out
}

func glossaryToken(j int) string {
	return fmt.Sprintf("⟪G%d⟫", j)
}
