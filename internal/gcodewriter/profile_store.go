package gcodewriter

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// DefaultProfilesDir returns the default directory for storing custom
// firmware profiles.
func DefaultProfilesDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "toolpath"), nil
}

// DefaultProfilesPath returns the default file path for custom profiles.
func DefaultProfilesPath() (string, error) {
	dir, err := DefaultProfilesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profiles.json"), nil
}

// SaveCustomProfiles persists custom profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []Profile) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCustomProfiles loads custom profiles from a JSON file, returning
// an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Profile{}, nil
		}
		return nil, err
	}
	var profiles []Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}
