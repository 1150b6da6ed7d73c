package config

import (
	"os"
	"path/filepath"

	"video-compressor/internal/domain"
)

// AppDirName is the per-user directory holding settings, presets, and logs.
const AppDirName = ".video-compressor"

// AppDir returns the per-user application directory, falling back to the working directory.
func AppDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, AppDirName)
}

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		PresetConfigPath: filepath.Join(AppDir(), "config", "default.yaml"),
		ExecutablePath:   "video-compress",
		LogLevel:         "info",
	}
}
