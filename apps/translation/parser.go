package translation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Segment kinds emitted by the content parser.
const (
	SegmentCodeFence   = "code_fence"
	SegmentInlineCode  = "inline_code"
	SegmentURL         = "url"
	SegmentMention     = "mention"
	SegmentHashtag     = "hashtag"
	SegmentPlaceholder = "placeholder_marker"
)

// DefaultMaxContentLength is the maximum message length in code points.
const DefaultMaxContentLength = 4000

// ProtectedSegment is a span of the original content that must pass through
// translation verbatim.
type ProtectedSegment struct {
	Kind string `json:"kind"`
	Raw  string `json:"raw"`
}

// ContentError carries the list of validation violations for a rejected
// message body.
type ContentError struct {
	Violations []string
}

func (e *ContentError) Error() string {
	return "invalid content: " + strings.Join(e.Violations, "; ")
}

// Patterns that are never accepted in message bodies.
var forbiddenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script[\s>].*`),
	regexp.MustCompile(`(?i)</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)data:text/html`),
}

var (
	codeFenceRe  = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\n.*?```")
	inlineCodeRe = regexp.MustCompile("`[^`\n]+`")
	urlRe        = regexp.MustCompile(`https?://[^\s]+`)
	mentionRe    = regexp.MustCompile(`@\w+`)
	hashtagRe    = regexp.MustCompile(`#\w+`)
	markerRe     = regexp.MustCompile(`⟪[PG]\d+⟫`)
)

// Parser splits message content into translatable text and protected spans.
type Parser struct {
	maxLength int
}

// NewParser returns a parser enforcing the given maximum content length in
// code points. Zero or negative falls back to DefaultMaxContentLength.
func NewParser(maxLength int) *Parser {
	if maxLength <= 0 {
		maxLength = DefaultMaxContentLength
	}
	return &Parser{maxLength: maxLength}
}

// Validate returns the list of violations for content, empty when the
// content is acceptable. Unbalanced emphasis markers are a rendering concern
// and are not checked here.
func (p *Parser) Validate(content string) []string {
	var violations []string
	if utf8.RuneCountInString(content) > p.maxLength {
		violations = append(violations, fmt.Sprintf("content exceeds %d characters", p.maxLength))
	}
	for _, re := range forbiddenPatterns {
		if re.MatchString(content) {
			violations = append(violations, "content contains a forbidden pattern")
			break
		}
	}
	return violations
}

type span struct {
	start, end int
	kind       string
}

// Mask validates content and replaces every protected span with an opaque
// token of the form ⟪P{i}⟫, where i is the zero-based index into the
// returned segment list. Unmask(masked, segments) reproduces the input
// byte-for-byte.
func (p *Parser) Mask(content string) (string, []ProtectedSegment, error) {
	if violations := p.Validate(content); len(violations) > 0 {
		return "", nil, &ContentError{Violations: violations}
	}

	var spans []span
	claimed := func(start, end int) bool {
		for _, s := range spans {
			if start < s.end && end > s.start {
				return true
			}
		}
		return false
	}
	// Priority order matters: code fences claim their region before inline
	// code, inline code before URLs and the short token kinds.
	passes := []struct {
		re   *regexp.Regexp
		kind string
	}{
		{codeFenceRe, SegmentCodeFence},
		{inlineCodeRe, SegmentInlineCode},
		{urlRe, SegmentURL},
		{mentionRe, SegmentMention},
		{hashtagRe, SegmentHashtag},
		{markerRe, SegmentPlaceholder},
	}
	for _, pass := range passes {
		for _, loc := range pass.re.FindAllStringIndex(content, -1) {
			if !claimed(loc[0], loc[1]) {
				spans = append(spans, span{start: loc[0], end: loc[1], kind: pass.kind})
			}
		}
	}
	if len(spans) == 0 {
		return content, nil, nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var sb strings.Builder
	segments := make([]ProtectedSegment, 0, len(spans))
	cursor := 0
	for i, s := range spans {
		sb.WriteString(content[cursor:s.start])
		sb.WriteString(placeholderToken(i))
		segments = append(segments, ProtectedSegment{Kind: s.kind, Raw: content[s.start:s.end]})
		cursor = s.end
	}
	sb.WriteString(content[cursor:])
	return sb.String(), segments, nil
}

// Unmask restores the protected segments into a masked (and possibly
// translated) string. Tokens must have survived translation unchanged.
func Unmask(masked string, segments []ProtectedSegment) string {
	out := masked
	for i, seg := range segments {
		out = strings.Replace(out, placeholderToken(i), seg.Raw, 1)
	}
	return out
}

// StripMask removes every placeholder token, leaving only translatable text.
// Used to feed the language detector a clean signal and to decide whether a
// message has any translatable text at all.
func StripMask(masked string) string {
	return strings.TrimSpace(markerRe.ReplaceAllString(masked, " "))
}

func placeholderToken(i int) string {
	return fmt.Sprintf("⟪P%d⟫", i)
}
