package system

import (
	"strings"

	"github.com/flowtalk-io/flowtalk-backend/apps/models"
	"github.com/flowtalk-io/flowtalk-backend/apps/redis"
	"github.com/flowtalk-io/flowtalk-backend/lib/response"
	"github.com/getevo/evo/v2"
)

// secretSettingPrefixes marks setting keys whose values are encrypted at
// rest and masked in listings.
var secretSettingPrefixes = []string{
	"translator.api_key",
}

func isSecretSetting(key string) bool {
	for _, prefix := range secretSettingPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// GetSettings lists settings, optionally filtered by ?category=.
func (c Controller) GetSettings(req *evo.Request) interface{} {
	category := req.Query("category").String()
	if category == "" {
		category = "translator"
	}
	settings, err := models.GetSettingsByCategory(category)
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.List(settings, len(settings))
}

type updateSettingRequest struct {
	Value    string `json:"value"`
	Type     string `json:"type"`
	Category string `json:"category"`
}

type bulkSettingsRequest struct {
	Settings map[string]string `json:"settings"`
	Category string            `json:"category"`
}

// UpdateSettings writes a batch of settings in one request.
func (c Controller) UpdateSettings(req *evo.Request) interface{} {
	var params bulkSettingsRequest
	if err := req.BodyParser(&params); err != nil {
		return response.Error(response.ErrInvalidInput)
	}
	if len(params.Settings) == 0 {
		return response.Error(response.NewError(response.ErrorCodeMissingRequired, "No settings provided", 400))
	}
	category := params.Category
	if category == "" {
		category = "general"
	}

	for key, value := range params.Settings {
		if err := models.SetSetting(key, value, "string", category, isSecretSetting(key)); err != nil {
			return response.Error(response.ErrDatabaseError)
		}
	}
	return response.Message("Settings updated")
}

// GetSetting returns one setting by key. Secret values are masked.
func (c Controller) GetSetting(req *evo.Request) interface{} {
	key := req.Param("key").String()
	setting, err := models.GetSetting(key)
	if err != nil {
		return response.Error(response.ErrNotFound)
	}
	if setting.Secret {
		setting.Value = "********"
	}
	return response.OK(setting)
}

// SetSetting creates or updates one setting by key.
func (c Controller) SetSetting(req *evo.Request) interface{} {
	key := req.Param("key").String()
	var params updateSettingRequest
	if err := req.BodyParser(&params); err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	settingType := params.Type
	if settingType == "" {
		settingType = "string"
	}
	category := params.Category
	if category == "" {
		category = "general"
	}

	if err := models.SetSetting(key, params.Value, settingType, category, isSecretSetting(key)); err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.Message("Setting saved")
}

// DeleteSetting removes one setting by key.
func (c Controller) DeleteSetting(req *evo.Request) interface{} {
	key := req.Param("key").String()
	if err := models.DeleteSetting(key); err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.Message("Setting removed")
}

// GetRateLimitSettings lists the configurable rate-limited endpoints.
func (c Controller) GetRateLimitSettings(req *evo.Request) interface{} {
	settings := redis.GetRateLimitSettings()
	return response.List(settings, len(settings))
}

// GetRedisStatus reports whether the limiter's backing store is reachable.
func (c Controller) GetRedisStatus(req *evo.Request) interface{} {
	return response.OK(map[string]interface{}{
		"available": redis.IsAvailable(),
	})
}

type rateLimitUpdateRequest struct {
	MaxRequests int  `json:"max_requests"`
	WindowSecs  int  `json:"window_seconds"`
	Enabled     bool `json:"enabled"`
}

// UpdateRateLimitSetting adjusts one endpoint's rate limit and broadcasts
// the change to other instances.
func (c Controller) UpdateRateLimitSetting(req *evo.Request) interface{} {
	key := req.Param("key").String()

	known := false
	for _, endpoint := range redis.DefaultEndpoints {
		if endpoint.Key == key {
			known = true
			break
		}
	}
	if !known {
		return response.Error(response.NewError(response.ErrorCodeNotFound, "Unknown rate limit key", 404))
	}

	var params rateLimitUpdateRequest
	if err := req.BodyParser(&params); err != nil {
		return response.Error(response.ErrInvalidInput)
	}
	if params.MaxRequests <= 0 || params.WindowSecs <= 0 {
		return response.Error(response.NewError(response.ErrorCodeInvalidInput, "max_requests and window_seconds must be positive", 400))
	}

	if err := redis.SaveRateLimitSetting(key, params.MaxRequests, params.WindowSecs, params.Enabled); err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.Message("Rate limit updated")
}
