package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	appName     = "grammarviz"
	envDir      = "GRAMMARVIZ_CONFIG_DIR"
	fallbackDir = ".grammarviz"
)

// Dir returns the directory holding settings and key bindings.
// GRAMMARVIZ_CONFIG_DIR wins over the platform config directory.
func Dir() string {
	if dir := strings.TrimSpace(os.Getenv(envDir)); dir != "" {
		return dir
	}
	if base, err := os.UserConfigDir(); err == nil && base != "" {
		return filepath.Join(base, appName)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, fallbackDir)
	}
	return fallbackDir
}

// ThemeDir holds user theme files.
func ThemeDir() string {
	return filepath.Join(Dir(), "themes")
}
