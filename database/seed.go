package database

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"procurely/models"
	"procurely/store"
)

// EnsureAdmin creates the admin with the given email unless one exists. It
// reports whether a row was inserted.
func EnsureAdmin(ctx context.Context, stores *store.Stores, email, name, password string) (bool, error) {
	_, err := stores.AdminByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	admin := &models.AdminUser{Email: email, Name: name}
	if err := admin.SetPassword(password); err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	if err := stores.Admins.Create(ctx, admin); err != nil {
		return false, err
	}

	zap.L().Info("created admin", zap.String("email", email), zap.Int("admin_id", admin.ID))
	return true, nil
}

// SettingsFile is the layout of a settings seed file:
//
//	settings:
//	  - key: contact_phone
//	    value: "+91 22 5555 0100"
//	    type: text
type SettingsFile struct {
	Settings []SeedSetting `yaml:"settings"`
}

type SeedSetting struct {
	Key         string `yaml:"key"`
	Value       string `yaml:"value"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

// LoadSettingsFile parses a YAML settings seed file.
func LoadSettingsFile(path string) (*SettingsFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings seed: %w", err)
	}

	var f SettingsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse settings seed %s: %w", path, err)
	}
	return &f, nil
}

// SeedSettings inserts the settings whose keys are not stored yet and
// returns how many were added. Existing values are never overwritten.
func SeedSettings(ctx context.Context, stores *store.Stores, f *SettingsFile) (int, error) {
	added := 0
	for _, s := range f.Settings {
		_, err := stores.SettingByKey(ctx, s.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return added, err
		}

		typ := s.Type
		if typ == "" {
			typ = models.SettingText
		}
		setting := &models.SiteSetting{Key: s.Key, Value: s.Value, Type: typ, Description: s.Description}
		if err := stores.Settings.Create(ctx, setting); err != nil {
			return added, fmt.Errorf("seed setting %q: %w", s.Key, err)
		}
		added++
	}

	if added > 0 {
		zap.L().Info("seeded site settings", zap.Int("count", added))
	}
	return added, nil
}
