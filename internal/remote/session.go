package remote

import (
	"context"
	"fmt"

	"github.com/mydiary/mydiary/internal/domain"
)

// SessionStore persists the signed-in session between runs.
type SessionStore interface {
	// LoadSession returns the stored session, or nil when signed out.
	LoadSession(ctx context.Context) (*domain.Session, error)
	SaveSession(ctx context.Context, s *domain.Session) error
	ClearSession(ctx context.Context) error
}

// SettingsStore is the settings half of the local store.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string, dest any) (bool, error)
	SetSetting(ctx context.Context, key string, value any) error
	DeleteSetting(ctx context.Context, key string) error
}

// SettingsSessionStore keeps the session under the cloudSession setting.
type SettingsSessionStore struct {
	settings SettingsStore
}

// NewSettingsSessionStore creates a SessionStore over local settings.
func NewSettingsSessionStore(settings SettingsStore) *SettingsSessionStore {
	return &SettingsSessionStore{settings: settings}
}

// LoadSession implements SessionStore.
func (s *SettingsSessionStore) LoadSession(ctx context.Context) (*domain.Session, error) {
	var sess domain.Session
	ok, err := s.settings.GetSetting(ctx, domain.SettingCloudSession, &sess)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok || sess.AccessToken == "" {
		return nil, nil
	}
	return &sess, nil
}

// SaveSession implements SessionStore.
func (s *SettingsSessionStore) SaveSession(ctx context.Context, sess *domain.Session) error {
	if err := s.settings.SetSetting(ctx, domain.SettingCloudSession, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// ClearSession implements SessionStore.
func (s *SettingsSessionStore) ClearSession(ctx context.Context) error {
	if err := s.settings.DeleteSetting(ctx, domain.SettingCloudSession); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
