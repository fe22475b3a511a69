package translation

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/flowtalk-io/flowtalk-backend/apps/models"
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/getevo/evo/v2/lib/settings"
)

// App wires the translation pipeline into the service. The message store is
// injected by the chat app during registration; the pipeline itself is built
// in WhenReady once settings are loaded.
type App struct{}

var (
	mu           sync.RWMutex
	service      *Orchestrator
	detector     *Detector
	cache        *Cache
	parser       *Parser
	translator   Translator
	glossaries   *dbGlossaryProvider
	messageStore MessageStore
)

// SetMessageStore injects the persistence layer the orchestrator uses. Must
// be called before WhenReady (the chat app does this in Register).
func SetMessageStore(store MessageStore) {
	mu.Lock()
	defer mu.Unlock()
	messageStore = store
}

// GetOrchestrator returns the process-wide pipeline, or nil before startup.
func GetOrchestrator() *Orchestrator {
	mu.RLock()
	defer mu.RUnlock()
	return service
}

// GetDetector returns the process-wide language detector.
func GetDetector() *Detector {
	mu.RLock()
	defer mu.RUnlock()
	return detector
}

// GetCache returns the process-wide translation cache.
func GetCache() *Cache {
	mu.RLock()
	defer mu.RUnlock()
	return cache
}

// GetParser returns the process-wide content parser.
func GetParser() *Parser {
	mu.RLock()
	defer mu.RUnlock()
	return parser
}

func (a App) Register() error {
	return nil
}

func (a App) Router() error {
	var controller Controller

	evo.Get("/api/languages", controller.Languages)
	evo.Post("/api/translation/detect", controller.DetectLanguage)
	evo.Get("/api/translation/cache/stats", controller.CacheStats)
	evo.Post("/api/translation/cache/cleanup", controller.CacheCleanup)

	evo.Get("/api/glossary", controller.ListGlossary)
	evo.Post("/api/glossary", controller.CreateGlossaryEntry)
	evo.Delete("/api/glossary/:id", controller.DeleteGlossaryEntry)

	return nil
}

func (a App) WhenReady() error {
	mu.Lock()
	defer mu.Unlock()

	languages := SupportedLanguages()

	maxContent := int(settings.Get("TRANSLATOR.MAX_CONTENT_LENGTH", DefaultMaxContentLength).Int64())
	parser = NewParser(maxContent)

	detector = NewDetector(languages)

	maxEntries := int(settings.Get("CACHE.MAX_ENTRIES", 10000).Int64())
	ttl, err := settings.Get("CACHE.TTL", "24h").Duration()
	if err != nil || ttl <= 0 {
		ttl = 24 * time.Hour
	}
	cache = NewCache(maxEntries, ttl)

	translator = buildTranslator()

	concurrency := int(settings.Get("TRANSLATOR.FANOUT_CONCURRENCY", DefaultFanoutConcurrency).Int64())

	if messageStore == nil {
		log.Warning("translation pipeline has no message store, orchestrator disabled")
		return nil
	}

	glossaries = &dbGlossaryProvider{}
	service = NewOrchestrator(messageStore, cache, translator, glossaries, parser, languages, concurrency)
	log.Info("translation pipeline ready (%d languages, concurrency %d)", len(languages), concurrency)
	return nil
}

func (a App) Name() string {
	return "translation"
}

// buildTranslator picks the external translator unless the service is
// configured offline or has no credentials, in which case the bundled phrase
// table serves as fallback.
func buildTranslator() Translator {
	offline := settings.Get("TRANSLATOR.OFFLINE").Bool()
	if val := models.GetSettingValue("translator.offline", ""); val != "" {
		offline, _ = strconv.ParseBool(val)
	}

	apiKey := models.GetSettingValue("translator.api_key", "")
	if apiKey == "" {
		apiKey = settings.Get("TRANSLATOR.API_KEY").String()
	}
	if apiKey == "" {
		apiKey = os.Getenv("TRANSLATOR_API_KEY")
	}

	if offline || apiKey == "" {
		log.Info("using offline phrase-table translator")
		return PhraseTableTranslator{}
	}

	baseURL := models.GetSettingValue("translator.base_url", settings.Get("TRANSLATOR.BASE_URL").String())
	model := models.GetSettingValue("translator.model", settings.Get("TRANSLATOR.MODEL").String())
	return NewHTTPTranslator(apiKey, baseURL, model)
}
