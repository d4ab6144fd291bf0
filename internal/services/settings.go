package services

import (
	"encoding/json"
	"os"
)

// Settings is a flat JSON object persisted to a sibling file next to
// the database. PUT semantics are full overwrite, never a merge.
type Settings map[string]interface{}

type SettingsService struct {
	path string
}

func NewSettingsService() *SettingsService {
	path := os.Getenv("SETTINGS_FILE")
	if path == "" {
		path = "settings.json"
	}
	return &SettingsService{path: path}
}

// NewSettingsServiceWithPath is used by tests to point at a temp file.
func NewSettingsServiceWithPath(path string) *SettingsService {
	return &SettingsService{path: path}
}

// DefaultSettings are served only while no settings file exists yet.
func DefaultSettings() Settings {
	return Settings{
		"site_name":           "ModernBlog",
		"posts_per_page":      10,
		"allow_comments":      true,
		"allow_registration":  true,
		"email_notifications": false,
		"theme":               "light",
	}
}

// Get returns the stored settings, or the defaults when nothing has
// been stored.
func (s *SettingsService) Get() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Put replaces the stored settings wholesale.
func (s *SettingsService) Put(settings Settings) error {
	data, err := json.MarshalIndent(settings, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
