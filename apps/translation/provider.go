package translation

import (
	"sync"
	"time"

	"github.com/flowtalk-io/flowtalk-backend/apps/models"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
)

// glossaryRefreshInterval bounds how stale a scope's merged glossary may be.
const glossaryRefreshInterval = time.Minute

type cachedGlossary struct {
	glossary *Glossary
	loadedAt time.Time
}

// dbGlossaryProvider merges the bundled glossary with database entries:
// the shared "default" scope first, then the community's own terms on top.
type dbGlossaryProvider struct {
	mu     sync.Mutex
	scopes map[string]cachedGlossary
}

func (p *dbGlossaryProvider) GlossaryFor(communityID string) *Glossary {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scopes == nil {
		p.scopes = make(map[string]cachedGlossary)
	}
	if cached, ok := p.scopes[communityID]; ok && time.Since(cached.loadedAt) < glossaryRefreshInterval {
		return cached.glossary
	}

	glossary := p.load(communityID)
	p.scopes[communityID] = cachedGlossary{glossary: glossary, loadedAt: time.Now()}
	return glossary
}

func (p *dbGlossaryProvider) load(communityID string) *Glossary {
	glossary := DefaultGlossary()

	if shared := loadScopeTerms(models.GlossaryScopeDefault); len(shared) > 0 {
		glossary = glossary.Merge(shared)
	}
	if communityID != "" && communityID != models.GlossaryScopeDefault {
		if own := loadScopeTerms(communityID); len(own) > 0 {
			glossary = glossary.Merge(own)
		}
	}
	return glossary
}

func loadScopeTerms(scope string) []string {
	var terms []string
	err := db.Model(&models.GlossaryEntry{}).
		Where("scope = ?", scope).
		Pluck("term", &terms).Error
	if err != nil {
		log.Warning("failed to load glossary scope %s: %v", scope, err)
		return nil
	}
	return terms
}

// InvalidateGlossary drops the cached merged glossary for a scope so the
// next message sees fresh terms immediately.
func InvalidateGlossary(scope string) {
	mu.RLock()
	p := glossaries
	mu.RUnlock()
	if p == nil {
		return
	}
	p.mu.Lock()
	delete(p.scopes, scope)
	p.mu.Unlock()
}
