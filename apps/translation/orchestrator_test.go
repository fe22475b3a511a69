package translation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is the in-memory MessageStore used by pipeline tests.
type memStore struct {
	mu           sync.Mutex
	messages     map[string]*MessageRecord
	translations map[string][]TranslationRecord
}

func newMemStore(msgs ...MessageRecord) *memStore {
	s := &memStore{
		messages:     make(map[string]*MessageRecord),
		translations: make(map[string][]TranslationRecord),
	}
	for i := range msgs {
		m := msgs[i]
		s.messages[m.ID] = &m
	}
	return s
}

func (s *memStore) GetMessage(_ context.Context, id string) (*MessageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[id]
	if !ok {
		return nil, nil
	}
	copy := *msg
	return &copy, nil
}

func (s *memStore) TransitionStatus(_ context.Context, id, from, to string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[id]
	if !ok || msg.Status != from {
		return false, nil
	}
	msg.Status = to
	return true, nil
}

func (s *memStore) AppendTranslation(_ context.Context, id string, tr TranslationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.translations[id] {
		if existing.TargetLanguage == tr.TargetLanguage {
			return nil
		}
	}
	s.translations[id] = append(s.translations[id], tr)
	return nil
}

func (s *memStore) status(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages[id].Status
}

func (s *memStore) translationCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.translations[id])
}

func (s *memStore) translationFor(id, lang string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tr := range s.translations[id] {
		if tr.TargetLanguage == lang {
			return tr.TranslatedContent, true
		}
	}
	return "", false
}

// stubTranslator counts calls and delegates to fn; by default it prefixes
// the target language like the offline fallback does.
type stubTranslator struct {
	mu    sync.Mutex
	calls int
	delay time.Duration
	fn    func(text, source, target string) (string, error)
}

func (s *stubTranslator) Translate(_ context.Context, text, source, target string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.fn != nil {
		return s.fn(text, source, target)
	}
	return fmt.Sprintf("[%s] %s", target, text), nil
}

func (s *stubTranslator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func sentMessage(id, content, lang string) MessageRecord {
	return MessageRecord{
		ID:             id,
		ChannelID:      "ch-1",
		CommunityID:    "co-1",
		SenderID:       "u-1",
		Content:        content,
		SourceLanguage: lang,
		Status:         StatusSent,
	}
}

func TestOrchestratorTranslatesAllTargets(t *testing.T) {
	store := newMemStore(sentMessage("m1", "the deployment finished without errors", "en"))
	translator := &stubTranslator{}
	o := NewOrchestrator(store, NewCache(100, time.Hour), translator, nil, nil, nil, 0)

	summary, err := o.TranslateMessage(context.Background(), "m1", []string{"es", "fr"})
	require.NoError(t, err)
	assert.Equal(t, StatusTranslated, summary.Status)
	assert.Equal(t, StatusTranslated, store.status("m1"))
	assert.Equal(t, 2, store.translationCount("m1"))

	got, ok := store.translationFor("m1", "es")
	require.True(t, ok)
	assert.Equal(t, "[es] the deployment finished without errors", got)
}

func TestOrchestratorAllTargetsFailedMarksFailed(t *testing.T) {
	store := newMemStore(sentMessage("m1", "the deployment finished", "en"))
	translator := &stubTranslator{fn: func(string, string, string) (string, error) {
		return "", ErrTranslationFailed
	}}
	o := NewOrchestrator(store, nil, translator, nil, nil, nil, 0)

	summary, err := o.TranslateMessage(context.Background(), "m1", []string{"es", "fr"})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, summary.Status)
	assert.Equal(t, StatusFailed, store.status("m1"))
	assert.Equal(t, 0, store.translationCount("m1"))
	for _, out := range summary.Outcomes {
		assert.Error(t, out.Err)
	}
}

func TestOrchestratorPartialFailureStillTranslated(t *testing.T) {
	store := newMemStore(sentMessage("m1", "the deployment finished", "en"))
	translator := &stubTranslator{fn: func(text, _, target string) (string, error) {
		if target == "fr" {
			return "", errors.New("provider timeout")
		}
		return "[" + target + "] " + text, nil
	}}
	o := NewOrchestrator(store, nil, translator, nil, nil, nil, 0)

	summary, err := o.TranslateMessage(context.Background(), "m1", []string{"es", "fr"})
	require.NoError(t, err)
	assert.Equal(t, StatusTranslated, summary.Status)
	assert.Equal(t, 1, store.translationCount("m1"))
}

func TestOrchestratorUsesCache(t *testing.T) {
	content := "the deployment finished"
	cache := NewCache(100, time.Hour)
	cache.Set(CacheKey(content, "es"), "cached spanish")

	store := newMemStore(sentMessage("m1", content, "en"))
	translator := &stubTranslator{}
	o := NewOrchestrator(store, cache, translator, nil, nil, nil, 0)

	summary, err := o.TranslateMessage(context.Background(), "m1", []string{"es"})
	require.NoError(t, err)
	require.Len(t, summary.Outcomes, 1)
	assert.True(t, summary.Outcomes[0].FromCache)
	assert.Equal(t, 0, translator.callCount(), "cache hit must not call the translator")

	got, ok := store.translationFor("m1", "es")
	require.True(t, ok)
	assert.Equal(t, "cached spanish", got)
}

func TestOrchestratorPopulatesCacheForNextMessage(t *testing.T) {
	content := "the deployment finished"
	cache := NewCache(100, time.Hour)
	store := newMemStore(
		sentMessage("m1", content, "en"),
		sentMessage("m2", content, "en"),
	)
	translator := &stubTranslator{}
	o := NewOrchestrator(store, cache, translator, nil, nil, nil, 0)

	_, err := o.TranslateMessage(context.Background(), "m1", []string{"es"})
	require.NoError(t, err)
	summary, err := o.TranslateMessage(context.Background(), "m2", []string{"es"})
	require.NoError(t, err)

	require.Len(t, summary.Outcomes, 1)
	assert.True(t, summary.Outcomes[0].FromCache)
	assert.Equal(t, 1, translator.callCount())
}

func TestOrchestratorFiltersTargets(t *testing.T) {
	store := newMemStore(sentMessage("m1", "the deployment finished", "en"))
	translator := &stubTranslator{}
	o := NewOrchestrator(store, nil, translator, nil, nil, nil, 0)

	// Source language, duplicates and unsupported codes are all dropped.
	summary, err := o.TranslateMessage(context.Background(), "m1", []string{"en", "ES", "es", "xx", ""})
	require.NoError(t, err)
	assert.Equal(t, StatusTranslated, summary.Status)
	assert.Equal(t, 1, store.translationCount("m1"))
	assert.Equal(t, 1, translator.callCount())
}

func TestOrchestratorNoTargetsCompletesImmediately(t *testing.T) {
	store := newMemStore(sentMessage("m1", "the deployment finished", "en"))
	translator := &stubTranslator{}
	o := NewOrchestrator(store, nil, translator, nil, nil, nil, 0)

	summary, err := o.TranslateMessage(context.Background(), "m1", []string{"en"})
	require.NoError(t, err)
	assert.Equal(t, StatusTranslated, summary.Status)
	assert.Equal(t, 0, translator.callCount())
}

func TestOrchestratorFullyProtectedContent(t *testing.T) {
	store := newMemStore(sentMessage("m1", "https://example.com/build/123", "en"))
	translator := &stubTranslator{}
	o := NewOrchestrator(store, nil, translator, nil, nil, nil, 0)

	summary, err := o.TranslateMessage(context.Background(), "m1", []string{"es"})
	require.NoError(t, err)
	assert.Equal(t, StatusTranslated, summary.Status)
	assert.Equal(t, 0, translator.callCount(), "nothing translatable remains after masking")
	assert.Equal(t, 0, store.translationCount("m1"))
}

func TestOrchestratorSkipsAlreadyProcessedMessage(t *testing.T) {
	msg := sentMessage("m1", "the deployment finished", "en")
	msg.Status = StatusTranslated
	store := newMemStore(msg)
	translator := &stubTranslator{}
	o := NewOrchestrator(store, nil, translator, nil, nil, nil, 0)

	summary, err := o.TranslateMessage(context.Background(), "m1", []string{"es"})
	require.NoError(t, err)
	assert.Equal(t, StatusTranslated, summary.Status)
	assert.Equal(t, 0, translator.callCount())
}

func TestOrchestratorMissingMessage(t *testing.T) {
	store := newMemStore()
	o := NewOrchestrator(store, nil, &stubTranslator{}, nil, nil, nil, 0)

	_, err := o.TranslateMessage(context.Background(), "nope", []string{"es"})
	require.Error(t, err)
}

func TestOrchestratorCollapsesConcurrentRuns(t *testing.T) {
	store := newMemStore(sentMessage("m1", "the deployment finished", "en"))
	translator := &stubTranslator{delay: 50 * time.Millisecond}
	o := NewOrchestrator(store, nil, translator, nil, nil, nil, 0)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := o.TranslateMessage(context.Background(), "m1", []string{"es", "fr"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, translator.callCount(), "one run, one call per target")
	assert.Equal(t, 2, store.translationCount("m1"))
	assert.Equal(t, StatusTranslated, store.status("m1"))
}

func TestOrchestratorRestoresProtectedSpans(t *testing.T) {
	content := "FlowTalk deploy logs at https://ci.example.com/run/9"
	store := newMemStore(sentMessage("m1", content, "en"))
	// Identity translator: placeholders and glossary tokens come back as-is.
	translator := &stubTranslator{fn: func(text, _, _ string) (string, error) {
		return text, nil
	}}
	o := NewOrchestrator(store, nil, translator, nil, nil, nil, 0)

	_, err := o.TranslateMessage(context.Background(), "m1", []string{"es"})
	require.NoError(t, err)

	got, ok := store.translationFor("m1", "es")
	require.True(t, ok)
	assert.Contains(t, got, "https://ci.example.com/run/9", "URL survives translation verbatim")
	assert.Contains(t, got, "FlowTalk", "glossary term keeps its casing")
	assert.NotContains(t, got, "⟪", "no tokens leak into the stored translation")
}
