package domain

import "fmt"

// Setting keys. Values are opaque to the store; the services below own
// their shape.
const (
	SettingStorageMode      = "storageMode"
	SettingLockPassword     = "lockPassword"
	SettingStreakCount      = "streakCount"
	SettingLastEntryDate    = "lastEntryDate"
	SettingAchievements     = "achievements"
	SettingTheme            = "theme"
	SettingAmbientSound     = "ambientSound"
	SettingAmbientVolume    = "ambientVolume"
	SettingBiometricEnabled = "biometricEnabled"
	SettingCloudSession     = "cloudSession"
	SettingQuoteDate        = "quoteDate"
	SettingDailyQuote       = "dailyQuote"
)

// StorageMode selects where entries live.
type StorageMode string

const (
	StorageLocal StorageMode = "local"
	StorageCloud StorageMode = "cloud"
)

// DefaultStorageMode applies when no mode has been persisted.
const DefaultStorageMode = StorageLocal

// ParseStorageMode validates a mode name.
func ParseStorageMode(s string) (StorageMode, error) {
	switch StorageMode(s) {
	case StorageLocal, StorageCloud:
		return StorageMode(s), nil
	default:
		return "", fmt.Errorf("unknown storage mode %q (want local or cloud)", s)
	}
}

// Theme is the display theme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// AmbientSound is the background sound preference.
type AmbientSound string

const (
	AmbientNone   AmbientSound = "none"
	AmbientRain   AmbientSound = "rain"
	AmbientOcean  AmbientSound = "ocean"
	AmbientForest AmbientSound = "forest"
)

// Preferences groups the presentation settings.
type Preferences struct {
	Theme            Theme        `json:"theme" validate:"oneof=light dark system"`
	AmbientSound     AmbientSound `json:"ambientSound" validate:"oneof=none rain ocean forest"`
	AmbientVolume    float64      `json:"ambientVolume" validate:"gte=0,lte=1"`
	BiometricEnabled bool         `json:"biometricEnabled"`
}

// DefaultPreferences is what a fresh install reports.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         ThemeSystem,
		AmbientSound:  AmbientNone,
		AmbientVolume: 0.3,
	}
}

// MinPasswordLength applies to the lock password and to hosted accounts.
const MinPasswordLength = 4
