package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mydiary/mydiary/internal/domain"
	"github.com/mydiary/mydiary/internal/store"
	"github.com/mydiary/mydiary/internal/validation"
)

// PreferencesService reads and writes the presentation settings. Each
// preference is its own settings key; missing keys fall back to defaults.
type PreferencesService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewPreferencesService creates a new preferences service.
func NewPreferencesService(store *store.Store, v *validation.Validator, logger *slog.Logger) *PreferencesService {
	return &PreferencesService{
		store:     store,
		validator: v,
		logger:    logger,
	}
}

// PreferencesUpdate contains fields that can be updated.
type PreferencesUpdate struct {
	Theme            *domain.Theme
	AmbientSound     *domain.AmbientSound
	AmbientVolume    *float64
	BiometricEnabled *bool
}

// Get returns the current preferences.
func (s *PreferencesService) Get(ctx context.Context) (domain.Preferences, error) {
	p := domain.DefaultPreferences()
	fields := []struct {
		key  string
		dest any
	}{
		{domain.SettingTheme, &p.Theme},
		{domain.SettingAmbientSound, &p.AmbientSound},
		{domain.SettingAmbientVolume, &p.AmbientVolume},
		{domain.SettingBiometricEnabled, &p.BiometricEnabled},
	}
	for _, f := range fields {
		if _, err := s.store.GetSetting(ctx, f.key, f.dest); err != nil {
			return p, fmt.Errorf("read preference %s: %w", f.key, err)
		}
	}
	return p, nil
}

// Update applies the non-nil fields and returns the resulting preferences.
// Nothing is written unless the merged result is valid.
func (s *PreferencesService) Update(ctx context.Context, update PreferencesUpdate) (domain.Preferences, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return p, err
	}

	changed := map[string]any{}
	if update.Theme != nil {
		p.Theme = *update.Theme
		changed[domain.SettingTheme] = p.Theme
	}
	if update.AmbientSound != nil {
		p.AmbientSound = *update.AmbientSound
		changed[domain.SettingAmbientSound] = p.AmbientSound
	}
	if update.AmbientVolume != nil {
		p.AmbientVolume = *update.AmbientVolume
		changed[domain.SettingAmbientVolume] = p.AmbientVolume
	}
	if update.BiometricEnabled != nil {
		p.BiometricEnabled = *update.BiometricEnabled
		changed[domain.SettingBiometricEnabled] = p.BiometricEnabled
	}

	if err := s.validator.Validate(p); err != nil {
		return domain.Preferences{}, err
	}

	for key, value := range changed {
		if err := s.store.SetSetting(ctx, key, value); err != nil {
			return domain.Preferences{}, fmt.Errorf("save preference %s: %w", key, err)
		}
	}
	if len(changed) > 0 {
		s.logger.Debug("preferences updated", "fields", len(changed))
	}
	return p, nil
}
