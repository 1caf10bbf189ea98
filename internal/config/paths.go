package config

import (
	"os"
	"path/filepath"
)

// VesperPath returns the root directory for Vesper data.
// It uses $VESPER_PATH if set, otherwise defaults to ~/.vesper.
func VesperPath() string {
	if v := os.Getenv("VESPER_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".vesper")
	}
	return filepath.Join(home, ".vesper")
}

// ConfigPath returns the path to the Vesper config file.
func ConfigPath() string {
	return filepath.Join(VesperPath(), "config.jsonc")
}

// DotenvPath returns the path to the Vesper .env file.
func DotenvPath() string {
	return filepath.Join(VesperPath(), ".env")
}

// SkillsPath returns the default skills directory.
func SkillsPath() string {
	return filepath.Join(VesperPath(), "skills")
}

// HeartbeatPath returns the path to the gateway heartbeat file.
func HeartbeatPath() string {
	return filepath.Join(VesperPath(), "heartbeat.json")
}

// PrefsPath returns the path to the preferences database.
func PrefsPath() string {
	return filepath.Join(VesperPath(), "prefs.db")
}

// SecretsPath returns the path to the encrypted secrets file.
func SecretsPath() string {
	return filepath.Join(VesperPath(), "secrets.json")
}

// AutomationsPath returns the path to the automations file.
func AutomationsPath() string {
	return filepath.Join(VesperPath(), "automations.yaml")
}
