package translation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/getevo/evo/v2/lib/log"
	"golang.org/x/sync/errgroup"
)

// Message status values. Transitions follow
// sent -> translating -> translated|failed and are never reversed.
const (
	StatusSent        = "sent"
	StatusTranslating = "translating"
	StatusTranslated  = "translated"
	StatusFailed      = "failed"
)

// MessageRecord is the orchestrator's view of a stored message.
type MessageRecord struct {
	ID             string
	ChannelID      string
	CommunityID    string
	SenderID       string
	Content        string
	SourceLanguage string
	Status         string
}

// TranslationRecord is one per-language derivative of a message.
type TranslationRecord struct {
	TargetLanguage    string    `json:"target_language"`
	TranslatedContent string    `json:"translated_content"`
	CreatedAt         time.Time `json:"created_at"`
}

// MessageStore is the persistence contract the orchestrator needs. The gorm
// implementation lives in the chat app; tests use an in-memory one.
type MessageStore interface {
	GetMessage(ctx context.Context, id string) (*MessageRecord, error)
	// TransitionStatus performs a conditional update: the status only moves
	// to "to" when it currently equals "from". Returns whether the
	// transition happened.
	TransitionStatus(ctx context.Context, id, from, to string) (bool, error)
	// AppendTranslation is idempotent on (message, target language): a
	// duplicate append is a silent no-op.
	AppendTranslation(ctx context.Context, id string, tr TranslationRecord) error
}

// GlossaryProvider yields the merged glossary for a community scope.
type GlossaryProvider interface {
	GlossaryFor(communityID string) *Glossary
}

// StaticGlossaryProvider serves one fixed glossary regardless of scope.
type StaticGlossaryProvider struct {
	Glossary *Glossary
}

func (p StaticGlossaryProvider) GlossaryFor(string) *Glossary {
	if p.Glossary == nil {
		return DefaultGlossary()
	}
	return p.Glossary
}

// TargetOutcome reports the result of one target language.
type TargetOutcome struct {
	Language  string `json:"language"`
	FromCache bool   `json:"from_cache"`
	Err       error  `json:"-"`
}

// Summary is the aggregate result of a translateMessage run.
type Summary struct {
	MessageID string          `json:"message_id"`
	Status    string          `json:"status"`
	Outcomes  []TargetOutcome `json:"outcomes"`
}

// DefaultFanoutConcurrency bounds parallel external translator calls per
// message run.
const DefaultFanoutConcurrency = 8

type inflightRun struct {
	done    chan struct{}
	summary Summary
	err     error
}

// Orchestrator composes parser, glossary, cache and translator into the
// per-message fan-out. One long-lived instance per process.
type Orchestrator struct {
	store      MessageStore
	cache      TranslationCache
	translator Translator
	glossary   GlossaryProvider
	parser     *Parser
	languages  map[string]struct{}
	limit      int

	mu       sync.Mutex
	inflight map[string]*inflightRun
}

// NewOrchestrator wires the pipeline. languages is the supported target
// set; nil uses the built-in defaults. concurrency <= 0 uses the default
// bound.
func NewOrchestrator(store MessageStore, cache TranslationCache, translator Translator, glossary GlossaryProvider, parser *Parser, languages []string, concurrency int) *Orchestrator {
	if cache == nil {
		cache = NullCache{}
	}
	if glossary == nil {
		glossary = StaticGlossaryProvider{}
	}
	if parser == nil {
		parser = NewParser(0)
	}
	if len(languages) == 0 {
		languages = DefaultLanguages()
	}
	if concurrency <= 0 {
		concurrency = DefaultFanoutConcurrency
	}
	supported := make(map[string]struct{}, len(languages))
	for _, l := range languages {
		supported[NormalizeLanguage(l)] = struct{}{}
	}
	return &Orchestrator{
		store:      store,
		cache:      cache,
		translator: translator,
		glossary:   glossary,
		parser:     parser,
		languages:  supported,
		limit:      concurrency,
		inflight:   make(map[string]*inflightRun),
	}
}

// TranslateMessage fans a message out to the given target languages.
// Concurrent calls for the same message are collapsed onto one run; a call
// arriving after the message left "sent" observes the state and does no
// work.
func (o *Orchestrator) TranslateMessage(ctx context.Context, messageID string, targetLanguages []string) (Summary, error) {
	o.mu.Lock()
	if run, ok := o.inflight[messageID]; ok {
		o.mu.Unlock()
		select {
		case <-run.done:
			return run.summary, run.err
		case <-ctx.Done():
			return Summary{MessageID: messageID}, ctx.Err()
		}
	}
	run := &inflightRun{done: make(chan struct{})}
	o.inflight[messageID] = run
	o.mu.Unlock()

	summary, err := o.run(ctx, messageID, targetLanguages)

	run.summary = summary
	run.err = err
	close(run.done)
	o.mu.Lock()
	delete(o.inflight, messageID)
	o.mu.Unlock()
	return summary, err
}

func (o *Orchestrator) run(ctx context.Context, messageID string, targetLanguages []string) (Summary, error) {
	summary := Summary{MessageID: messageID}

	moved, err := o.store.TransitionStatus(ctx, messageID, StatusSent, StatusTranslating)
	if err != nil {
		return summary, err
	}
	if !moved {
		// Someone else already processed (or is processing) this message.
		msg, err := o.store.GetMessage(ctx, messageID)
		if err != nil {
			return summary, err
		}
		if msg == nil {
			return summary, errors.New("message not found")
		}
		summary.Status = msg.Status
		return summary, nil
	}

	msg, err := o.store.GetMessage(ctx, messageID)
	if err != nil {
		return summary, err
	}
	if msg == nil {
		return summary, errors.New("message not found")
	}

	targets := o.filterTargets(targetLanguages, msg.SourceLanguage)

	masked, codeSegments, err := o.parser.Mask(msg.Content)
	if err != nil {
		// Content was validated at post time; a parse failure here means
		// nothing is translatable.
		masked, codeSegments = msg.Content, nil
	}

	// A message that is entirely protected content has nothing to
	// translate; so does one with no applicable targets.
	if len(targets) == 0 || StripMask(masked) == "" {
		if _, err := o.store.TransitionStatus(ctx, messageID, StatusTranslating, StatusTranslated); err != nil {
			return summary, err
		}
		summary.Status = StatusTranslated
		return summary, nil
	}

	glossary := o.glossary.GlossaryFor(msg.CommunityID)

	outcomes := make([]TargetOutcome, len(targets))
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	g.SetLimit(o.limit)
	for i, target := range targets {
		g.Go(func() error {
			outcomes[i] = o.translateTarget(gctx, msg, masked, codeSegments, glossary, target)
			return nil
		})
	}
	_ = g.Wait()
	summary.Outcomes = outcomes

	succeeded := 0
	for _, out := range outcomes {
		if out.Err == nil {
			succeeded++
		} else {
			log.Warning("translation of message %s to %s failed: %v", messageID, out.Language, out.Err)
		}
	}

	final := StatusTranslated
	if succeeded == 0 {
		final = StatusFailed
	}
	if _, err := o.store.TransitionStatus(ctx, messageID, StatusTranslating, final); err != nil {
		return summary, err
	}
	summary.Status = final
	return summary, nil
}

func (o *Orchestrator) translateTarget(ctx context.Context, msg *MessageRecord, masked string, codeSegments []ProtectedSegment, glossary *Glossary, target string) TargetOutcome {
	outcome := TargetOutcome{Language: target}
	key := CacheKey(msg.Content, target)

	if cached, ok := o.cache.Get(key); ok {
		outcome.FromCache = true
		outcome.Err = o.store.AppendTranslation(ctx, msg.ID, TranslationRecord{
			TargetLanguage:    target,
			TranslatedContent: cached,
			CreatedAt:         time.Now(),
		})
		return outcome
	}

	protected, glossMatches := glossary.Protect(masked)
	raw, err := o.translator.Translate(ctx, protected, msg.SourceLanguage, target)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	final := Unmask(RestoreGlossary(raw, glossMatches), codeSegments)

	o.cache.Set(key, final)
	outcome.Err = o.store.AppendTranslation(ctx, msg.ID, TranslationRecord{
		TargetLanguage:    target,
		TranslatedContent: final,
		CreatedAt:         time.Now(),
	})
	return outcome
}

// filterTargets normalizes and deduplicates the requested targets, dropping
// unsupported languages and the source language itself.
func (o *Orchestrator) filterTargets(requested []string, sourceLanguage string) []string {
	source := NormalizeLanguage(sourceLanguage)
	seen := make(map[string]struct{}, len(requested))
	var targets []string
	for _, t := range requested {
		lang := NormalizeLanguage(t)
		if lang == "" || lang == source {
			continue
		}
		if _, ok := o.languages[lang]; !ok {
			continue
		}
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		targets = append(targets, lang)
	}
	return targets
}
