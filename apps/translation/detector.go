package translation

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
)

// DetectionResult is the outcome of language detection for a text.
type DetectionResult struct {
	Language    string   `json:"language"`
	IsRomanized bool     `json:"is_romanized"`
	Confidence  float64  `json:"confidence"`
	Fallbacks   []string `json:"fallbacks,omitempty"`
}

// MixedSegment is one sentence-level span of a mixed-language text.
type MixedSegment struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// MixedResult is the outcome of DetectMixed.
type MixedResult struct {
	Primary  string         `json:"primary"`
	Segments []MixedSegment `json:"segments"`
}

const (
	minDetectableRunes = 10
	scriptBonus        = 0.5
	accentBonus        = 0.08
	patternWeight      = 4.0
	linguaWeight       = 0.4
	romanizedThreshold = 0.15
	uncertainBelow     = 0.6
)

// Detector scores text against per-language frequent-word lists, script
// ranges and orthographic patterns, blended with a statistical detector.
// Romanized Hindi is recognized through a dedicated Latin-script wordlist.
type Detector struct {
	languages []string
	wordSets  map[string]map[string]struct{}
	romanized map[string]struct{}
	patterns  map[string][]*regexp.Regexp
	lingua    lingua.LanguageDetector
}

// linguaLanguages maps the supported ISO codes onto lingua's language set.
var linguaLanguages = map[string]lingua.Language{
	"en": lingua.English,
	"es": lingua.Spanish,
	"fr": lingua.French,
	"de": lingua.German,
	"it": lingua.Italian,
	"pt": lingua.Portuguese,
	"ru": lingua.Russian,
	"ja": lingua.Japanese,
	"ko": lingua.Korean,
	"zh": lingua.Chinese,
	"ar": lingua.Arabic,
	"hi": lingua.Hindi,
}

var linguaCodes = func() map[lingua.Language]string {
	out := make(map[lingua.Language]string, len(linguaLanguages))
	for code, lang := range linguaLanguages {
		out[lang] = code
	}
	return out
}()

// NewDetector builds a detector for the given language codes. Building the
// statistical models is expensive; create one instance at startup and share
// it.
func NewDetector(languages []string) *Detector {
	if len(languages) == 0 {
		languages = DefaultLanguages()
	}
	d := &Detector{
		languages: languages,
		wordSets:  make(map[string]map[string]struct{}),
		romanized: make(map[string]struct{}, len(romanizedHindiWords)),
		patterns:  make(map[string][]*regexp.Regexp),
	}
	var models []lingua.Language
	for _, code := range languages {
		set := make(map[string]struct{})
		for _, w := range frequentWords[code] {
			set[w] = struct{}{}
		}
		d.wordSets[code] = set
		for _, p := range languagePatterns[code] {
			d.patterns[code] = append(d.patterns[code], regexp.MustCompile(p))
		}
		if lang, ok := linguaLanguages[code]; ok {
			models = append(models, lang)
		}
	}
	for _, w := range romanizedHindiWords {
		d.romanized[w] = struct{}{}
	}
	if len(models) >= 2 {
		d.lingua = lingua.NewLanguageDetectorBuilder().
			FromLanguages(models...).
			WithMinimumRelativeDistance(0.1).
			Build()
	}
	return d
}

// DefaultLanguages returns a copy of the built-in language set.
func DefaultLanguages() []string {
	out := make([]string, len(defaultLanguages))
	copy(out, defaultLanguages)
	return out
}

// Detect classifies the language of text. Placeholder tokens from the parser
// are ignored. Texts shorter than ten code points fall back to English with
// low confidence.
func (d *Detector) Detect(text string) DetectionResult {
	clean := cleanForDetection(text)
	if utf8.RuneCountInString(clean) < minDetectableRunes {
		return DetectionResult{Language: "en", Confidence: 0.3}
	}

	scores := d.lexicalScores(clean)

	// Romanized Hindi is decided on the lexical scores alone: the
	// statistical blend below is tuned for native scripts and would let a
	// few English loanwords drown the romanized signal.
	romScore := d.romanizedScore(clean)
	if romScore > romanizedThreshold && romScore > 0.5*scores["en"] {
		second := 0.0
		for code, s := range scores {
			if code != "hi" && s > second {
				second = s
			}
		}
		return DetectionResult{
			Language:    "hi",
			IsRomanized: true,
			Confidence:  ratioConfidence(romScore, second),
			Fallbacks:   d.rankedFallbacks(scores, "hi"),
		}
	}

	d.blendLingua(clean, scores)

	best, second := "", 0.0
	bestScore := 0.0
	for _, code := range d.languages {
		s := scores[code]
		if s > bestScore {
			second = bestScore
			best, bestScore = code, s
		} else if s > second {
			second = s
		}
	}
	if best == "" || bestScore == 0 {
		return DetectionResult{Language: "en", Confidence: 0.4}
	}
	return DetectionResult{
		Language:   best,
		Confidence: ratioConfidence(bestScore, second),
		Fallbacks:  d.rankedFallbacks(scores, best),
	}
}

// DetectMixed splits the text on sentence boundaries, detects each span
// separately and picks a primary language weighted by character length.
func (d *Detector) DetectMixed(content string) MixedResult {
	parts := sentenceSplitRe.Split(content, -1)
	var result MixedResult
	weights := make(map[string]int)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		det := d.Detect(part)
		result.Segments = append(result.Segments, MixedSegment{Text: part, Language: det.Language})
		weights[det.Language] += utf8.RuneCountInString(part)
	}
	bestWeight := 0
	for lang, w := range weights {
		if w > bestWeight {
			result.Primary, bestWeight = lang, w
		}
	}
	if result.Primary == "" {
		result.Primary = "en"
	}
	return result
}

// IsUncertain reports whether detection confidence for content falls below
// the trust threshold.
func (d *Detector) IsUncertain(content string) bool {
	return d.Detect(content).Confidence < uncertainBelow
}

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

func (d *Detector) lexicalScores(clean string) map[string]float64 {
	scores := make(map[string]float64, len(d.languages))
	tokens := strings.Fields(clean)
	textLen := float64(utf8.RuneCountInString(clean))

	for _, code := range d.languages {
		var s float64
		if len(tokens) > 0 {
			hits := 0
			for _, tok := range tokens {
				if _, ok := d.wordSets[code][tok]; ok {
					hits++
				}
			}
			s += float64(hits) / float64(len(tokens))
		}
		if textLen > 0 {
			patternHits := 0
			for _, re := range d.patterns[code] {
				patternHits += len(re.FindAllStringIndex(clean, -1))
			}
			s += patternWeight * float64(patternHits) / textLen
		}
		scores[code] = s
	}

	for _, r := range clean {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			scores["ru"] += scriptBonus
		case unicode.Is(unicode.Han, r):
			scores["zh"] += scriptBonus
		case unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
			scores["ja"] += scriptBonus
		case unicode.Is(unicode.Hangul, r):
			scores["ko"] += scriptBonus
		case unicode.Is(unicode.Arabic, r):
			scores["ar"] += scriptBonus
		case unicode.Is(unicode.Devanagari, r):
			scores["hi"] += scriptBonus
		default:
			for _, code := range accentBonuses[r] {
				scores[code] += accentBonus
			}
		}
	}
	return scores
}

func (d *Detector) romanizedScore(clean string) float64 {
	tokens := strings.Fields(clean)
	if len(tokens) == 0 {
		return 0
	}
	hits := 0
	for _, tok := range tokens {
		if _, ok := d.romanized[tok]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}

func (d *Detector) blendLingua(clean string, scores map[string]float64) {
	if d.lingua == nil {
		return
	}
	for _, cv := range d.lingua.ComputeLanguageConfidenceValues(clean) {
		if code, ok := linguaCodes[cv.Language()]; ok {
			scores[code] += linguaWeight * cv.Value()
		}
	}
}

func (d *Detector) rankedFallbacks(scores map[string]float64, exclude string) []string {
	type scored struct {
		code  string
		score float64
	}
	var rest []scored
	for _, code := range d.languages {
		if code != exclude && scores[code] > 0 {
			rest = append(rest, scored{code, scores[code]})
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].score > rest[j].score })
	if len(rest) > 3 {
		rest = rest[:3]
	}
	out := make([]string, 0, len(rest))
	for _, r := range rest {
		out = append(out, r.code)
	}
	return out
}

// ratioConfidence maps the top-to-second score ratio onto confidence tiers.
func ratioConfidence(top, second float64) float64 {
	if second <= 0 {
		return 0.9
	}
	ratio := top / second
	switch {
	case ratio > 2.0:
		return 0.9
	case ratio > 1.5:
		return 0.75
	case ratio > 1.2:
		return 0.6
	default:
		return 0.4
	}
}

// cleanForDetection strips placeholder tokens and punctuation, lowercases
// and collapses whitespace.
func cleanForDetection(text string) string {
	text = markerRe.ReplaceAllString(text, " ")
	var sb strings.Builder
	for _, r := range text {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsSpace(r):
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
