package models

import (
	"time"

	"github.com/flowtalk-io/flowtalk-backend/lib/crypto"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
)

// Setting is a runtime-editable configuration value stored in the database.
// Settings override the config file (translator endpoint, model, limits).
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:setting_key;type:varchar(255);uniqueIndex;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	Type      string    `gorm:"type:varchar(50);default:'string'" json:"type"` // string, number, boolean, json
	Category  string    `gorm:"type:varchar(100);index" json:"category"`       // translator, cache, general
	Secret    bool      `gorm:"column:secret;default:0" json:"secret"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// GetSetting retrieves a setting by key. Secret values are decrypted before
// being returned.
func GetSetting(key string) (*Setting, error) {
	var setting Setting
	if err := db.Where("setting_key = ?", key).First(&setting).Error; err != nil {
		return nil, err
	}
	if setting.Secret && crypto.IsEncrypted(setting.Value) {
		plain, err := crypto.DecryptAES256GCM(setting.Value)
		if err != nil {
			log.Warning("failed to decrypt setting %s: %v", key, err)
		} else {
			setting.Value = plain
		}
	}
	return &setting, nil
}

// GetSettingValue retrieves only the value of a setting, falling back to
// defaultValue when absent.
func GetSettingValue(key string, defaultValue string) string {
	setting, err := GetSetting(key)
	if err != nil {
		return defaultValue
	}
	return setting.Value
}

// SetSetting creates or updates a setting. Secret values are encrypted at
// rest when an encryption key is configured.
func SetSetting(key, value, settingType, category string, secret bool) error {
	if secret {
		if encrypted, err := crypto.EncryptAES256GCM(value); err == nil {
			value = encrypted
		} else {
			log.Warning("storing setting %s unencrypted: %v", key, err)
		}
	}
	var setting Setting
	if err := db.Where("setting_key = ?", key).First(&setting).Error; err != nil {
		setting = Setting{
			Key:      key,
			Value:    value,
			Type:     settingType,
			Category: category,
			Secret:   secret,
		}
		return db.Create(&setting).Error
	}
	setting.Value = value
	setting.Secret = secret
	if settingType != "" {
		setting.Type = settingType
	}
	if category != "" {
		setting.Category = category
	}
	return db.Save(&setting).Error
}

// GetSettingsByCategory retrieves all settings in a category. Secret values
// are masked.
func GetSettingsByCategory(category string) ([]Setting, error) {
	var settings []Setting
	err := db.Where("category = ?", category).Find(&settings).Error
	for i := range settings {
		if settings[i].Secret {
			settings[i].Value = "********"
		}
	}
	return settings, err
}

// DeleteSetting removes a setting by key.
func DeleteSetting(key string) error {
	return db.Where("setting_key = ?", key).Delete(&Setting{}).Error
}
