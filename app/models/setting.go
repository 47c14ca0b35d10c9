package models

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Setting represents a single site-content setting row.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:setting_key;size:255;not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"type:longtext" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Setting keys managed through the admin panel.
const (
	SettingGlobalNotice      = "global_notice"
	SettingCreditsPageNotice = "credits_page_notice"
	SettingTermsOfService    = "terms_of_service"
	SettingPrivacyPolicy     = "privacy_policy"
	SettingSocialMediaLinks  = "social_media_links"
	SettingContactDetails    = "contact_details"
)

// AppSettings is the in-memory view of all site-content settings.
type AppSettings struct {
	GlobalNotice      string `json:"global_notice"`
	CreditsPageNotice string `json:"credits_page_notice"`
	TermsOfService    string `json:"terms_of_service"`
	PrivacyPolicy     string `json:"privacy_policy"`
	SocialMediaLinks  string `json:"social_media_links"`
	ContactDetails    string `json:"contact_details"`
}

var (
	appSettings *AppSettings
	settingsMu  sync.RWMutex
)

// GetAppSettings returns the current application settings snapshot.
func GetAppSettings() AppSettings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	if appSettings == nil {
		return AppSettings{SocialMediaLinks: "{}", ContactDetails: "[]"}
	}
	return *appSettings
}

// LoadSettings loads settings from database into memory.
func LoadSettings(db *gorm.DB) error {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	loaded := &AppSettings{
		SocialMediaLinks: "{}",
		ContactDetails:   "[]",
	}

	var settings []Setting
	if err := db.Find(&settings).Error; err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	for _, setting := range settings {
		switch setting.Key {
		case SettingGlobalNotice:
			loaded.GlobalNotice = setting.Value
		case SettingCreditsPageNotice:
			loaded.CreditsPageNotice = setting.Value
		case SettingTermsOfService:
			loaded.TermsOfService = setting.Value
		case SettingPrivacyPolicy:
			loaded.PrivacyPolicy = setting.Value
		case SettingSocialMediaLinks:
			loaded.SocialMediaLinks = setting.Value
		case SettingContactDetails:
			loaded.ContactDetails = setting.Value
		}
	}

	appSettings = loaded
	return nil
}

// SaveSetting upserts one setting row and refreshes the in-memory snapshot.
func SaveSetting(db *gorm.DB, key, value string) error {
	row := Setting{Key: key, Value: value}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return err
	}
	return LoadSettings(db)
}
