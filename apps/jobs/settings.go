package jobs

import (
	"strconv"

	"github.com/flowtalk-io/flowtalk-backend/apps/models"
	"github.com/flowtalk-io/flowtalk-backend/lib/response"
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/log"
)

// Job settings keys
const (
	SettingRetryEnabled        = "jobs.retry.enabled"
	SettingRetryStuckAfterMins = "jobs.retry.stuck_after_minutes"
	SettingExecutionRetention  = "jobs.cleanup.retention_days"
)

// JobSettingsCategory is the settings category for job settings
const JobSettingsCategory = "jobs"

// DefaultJobSettings defines the default values for job settings
var DefaultJobSettings = []models.Setting{
	{
		Key:      SettingRetryEnabled,
		Value:    "true",
		Type:     "boolean",
		Category: JobSettingsCategory,
	},
	{
		Key:      SettingRetryStuckAfterMins,
		Value:    "5",
		Type:     "number",
		Category: JobSettingsCategory,
	},
	{
		Key:      SettingExecutionRetention,
		Value:    "7",
		Type:     "number",
		Category: JobSettingsCategory,
	},
}

// InitJobSettings creates default job settings if they don't exist
func InitJobSettings() {
	for _, setting := range DefaultJobSettings {
		existing, err := models.GetSetting(setting.Key)
		if err != nil || existing == nil {
			if err := models.SetSetting(setting.Key, setting.Value, setting.Type, setting.Category, false); err != nil {
				log.Error("[jobs] Failed to create default setting %s: %v", setting.Key, err)
			}
		}
	}
}

// JobSettingsResponse represents the job settings for API response
type JobSettingsResponse struct {
	Retry struct {
		Enabled           bool `json:"enabled"`
		StuckAfterMinutes int  `json:"stuck_after_minutes"`
	} `json:"retry"`
	Cleanup struct {
		RetentionDays int `json:"retention_days"`
	} `json:"cleanup"`
}

// JobSettingsUpdateRequest represents the request to update job settings
type JobSettingsUpdateRequest struct {
	Retry *struct {
		Enabled           *bool `json:"enabled"`
		StuckAfterMinutes *int  `json:"stuck_after_minutes"`
	} `json:"retry,omitempty"`
	Cleanup *struct {
		RetentionDays *int `json:"retention_days"`
	} `json:"cleanup,omitempty"`
}

// GetJobSettings returns all job settings
// GET /api/admin/jobs/settings
func GetJobSettings(req *evo.Request) interface{} {
	settings := JobSettingsResponse{}

	settings.Retry.Enabled = getSettingBool(SettingRetryEnabled, true)
	settings.Retry.StuckAfterMinutes = getSettingInt(SettingRetryStuckAfterMins, 5)
	settings.Cleanup.RetentionDays = getSettingInt(SettingExecutionRetention, 7)

	return response.OK(settings)
}

// UpdateJobSettings updates job settings
// PUT /api/admin/jobs/settings
func UpdateJobSettings(req *evo.Request) interface{} {
	var request JobSettingsUpdateRequest
	if err := req.BodyParser(&request); err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	if request.Retry != nil {
		if request.Retry.Enabled != nil {
			updateSettingBool(SettingRetryEnabled, *request.Retry.Enabled)
		}
		if request.Retry.StuckAfterMinutes != nil {
			if *request.Retry.StuckAfterMinutes < 1 {
				return response.Error(response.NewError(response.ErrorCodeInvalidInput, "stuck_after_minutes must be at least 1", 400))
			}
			updateSettingInt(SettingRetryStuckAfterMins, *request.Retry.StuckAfterMinutes)
		}
	}

	if request.Cleanup != nil {
		if request.Cleanup.RetentionDays != nil {
			if *request.Cleanup.RetentionDays < 1 {
				return response.Error(response.NewError(response.ErrorCodeInvalidInput, "retention_days must be at least 1", 400))
			}
			updateSettingInt(SettingExecutionRetention, *request.Cleanup.RetentionDays)
		}
	}

	return GetJobSettings(req)
}

// Helper functions

func getSettingBool(key string, defaultValue bool) bool {
	setting, err := models.GetSetting(key)
	if err != nil || setting == nil {
		return defaultValue
	}
	return setting.Value == "true" || setting.Value == "1"
}

func getSettingInt(key string, defaultValue int) int {
	setting, err := models.GetSetting(key)
	if err != nil || setting == nil {
		return defaultValue
	}
	val, err := strconv.Atoi(setting.Value)
	if err != nil {
		return defaultValue
	}
	return val
}

func updateSettingBool(key string, value bool) {
	strValue := "false"
	if value {
		strValue = "true"
	}
	models.SetSetting(key, strValue, "boolean", JobSettingsCategory, false)
}

func updateSettingInt(key string, value int) {
	models.SetSetting(key, strconv.Itoa(value), "number", JobSettingsCategory, false)
}

// GetRetrySettings returns stuck translation retry settings for use in jobs
func GetRetrySettings() (enabled bool, stuckAfterMinutes int) {
	return getSettingBool(SettingRetryEnabled, true), getSettingInt(SettingRetryStuckAfterMins, 5)
}

// GetExecutionRetentionDays returns how long execution history is kept
func GetExecutionRetentionDays() int {
	return getSettingInt(SettingExecutionRetention, 7)
}
