package translation

import (
	"strings"

	"github.com/flowtalk-io/flowtalk-backend/apps/auth"
	"github.com/flowtalk-io/flowtalk-backend/apps/models"
	"github.com/flowtalk-io/flowtalk-backend/lib/response"
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
)

type Controller struct{}

// LanguageInfo is one supported target language.
type LanguageInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages lists the languages the relay can translate between.
func (c Controller) Languages(req *evo.Request) interface{} {
	codes := SupportedLanguages()
	languages := make([]LanguageInfo, 0, len(codes))
	for _, code := range codes {
		languages = append(languages, LanguageInfo{Code: code, Name: LanguageName(code)})
	}
	return response.List(languages, len(languages))
}

type detectRequest struct {
	Text string `json:"text" validate:"required"`
}

// DetectLanguage runs the detector over a text sample. Useful for clients
// that want to preview what language a draft will be attributed to.
func (c Controller) DetectLanguage(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	var params detectRequest
	if err := req.BodyParser(&params); err != nil {
		return response.Error(response.ErrInvalidInput)
	}
	if strings.TrimSpace(params.Text) == "" {
		return response.Error(response.NewError(response.ErrorCodeMissingRequired, "Text is required", 400))
	}

	d := GetDetector()
	if d == nil {
		return response.Error(response.ErrInternalError)
	}
	return response.OK(d.Detect(params.Text))
}

// CacheStats exposes translation cache counters.
func (c Controller) CacheStats(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	cc := GetCache()
	if cc == nil {
		return response.Error(response.ErrInternalError)
	}
	return response.OK(cc.Stats())
}

// CacheCleanup evicts expired entries on demand. Administrators only; the
// scheduler does the same periodically.
func (c Controller) CacheCleanup(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Type != auth.UserTypeAdministrator {
		return response.Error(response.ErrForbidden)
	}

	cc := GetCache()
	if cc == nil {
		return response.Error(response.ErrInternalError)
	}
	removed := cc.Cleanup()
	return response.OK(map[string]interface{}{
		"removed": removed,
		"entries": cc.Len(),
	})
}

// ListGlossary returns the glossary entries visible to the caller: the
// shared defaults plus, when ?community= is given, that community's terms.
func (c Controller) ListGlossary(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	scopes := []string{models.GlossaryScopeDefault}
	if communityID := req.Query("community").String(); communityID != "" {
		if !models.IsCommunityMember(user.UserID, communityID) && user.Type != auth.UserTypeAdministrator {
			return response.Error(response.ErrAccessDenied)
		}
		scopes = append(scopes, communityID)
	}

	var entries []models.GlossaryEntry
	if err := db.Where("scope IN ?", scopes).Order("scope, term").Find(&entries).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.List(entries, len(entries))
}

type glossaryEntryRequest struct {
	Scope        string `json:"scope"`
	Term         string `json:"term" validate:"required"`
	Category     string `json:"category"`
	PreserveCase *bool  `json:"preserve_case"`
}

// CreateGlossaryEntry adds a protected term. Default-scope terms require an
// administrator; community terms require membership in that community.
func (c Controller) CreateGlossaryEntry(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	var params glossaryEntryRequest
	if err := req.BodyParser(&params); err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	params.Term = strings.TrimSpace(params.Term)
	if params.Term == "" {
		return response.Error(response.NewError(response.ErrorCodeMissingRequired, "Term is required", 400))
	}
	if len(params.Term) > 255 {
		return response.Error(response.NewError(response.ErrorCodeInvalidInput, "Term is too long", 400))
	}

	scope := params.Scope
	if scope == "" {
		scope = models.GlossaryScopeDefault
	}
	if scope == models.GlossaryScopeDefault {
		if user.Type != auth.UserTypeAdministrator {
			return response.Error(response.ErrForbidden)
		}
	} else if !models.IsCommunityMember(user.UserID, scope) && user.Type != auth.UserTypeAdministrator {
		return response.Error(response.ErrAccessDenied)
	}

	category := params.Category
	switch category {
	case "":
		category = GlossaryCategoryCustom
	case GlossaryCategoryTechnical, GlossaryCategoryBrand, GlossaryCategoryProperNoun, GlossaryCategoryCustom:
	default:
		return response.Error(response.NewError(response.ErrorCodeInvalidInput, "Invalid glossary category", 400))
	}

	entry := models.GlossaryEntry{
		Scope:        scope,
		Term:         params.Term,
		Category:     category,
		PreserveCase: true,
	}
	if params.PreserveCase != nil {
		entry.PreserveCase = *params.PreserveCase
	}

	if err := db.Create(&entry).Error; err != nil {
		log.Debug("glossary entry create failed: %v", err)
		return response.Error(response.NewError(response.ErrorCodeConflict, "Term already exists in this scope", 409))
	}

	InvalidateGlossary(scope)
	return response.Created(entry)
}

// DeleteGlossaryEntry removes a protected term under the same permission
// rules as creation.
func (c Controller) DeleteGlossaryEntry(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	id := req.Param("id").Uint()
	if id == 0 {
		return response.Error(response.ErrInvalidInput)
	}

	var entry models.GlossaryEntry
	if err := db.First(&entry, id).Error; err != nil {
		return response.Error(response.ErrNotFound)
	}

	if entry.Scope == models.GlossaryScopeDefault {
		if user.Type != auth.UserTypeAdministrator {
			return response.Error(response.ErrForbidden)
		}
	} else if !models.IsCommunityMember(user.UserID, entry.Scope) && user.Type != auth.UserTypeAdministrator {
		return response.Error(response.ErrAccessDenied)
	}

	if err := db.Delete(&entry).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	InvalidateGlossary(entry.Scope)
	return response.Message("Glossary entry removed")
}
