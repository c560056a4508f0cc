// Package env reads the configuration modrules takes from the environment.
package env

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Environment variables.
const (
	CatalogVar   = "MODRULES_CATALOG"
	LogLevelVar  = "MODRULES_LOG_LEVEL"
	LogFormatVar = "MODRULES_LOG_FORMAT"
)

// Defaults used when neither a flag nor the environment sets a value.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// UserCatalogFile is the catalog looked up in ConfigDir.
const UserCatalogFile = "catalog.hcl"

// ConfigDir returns the per-user configuration directory of modrules.
func ConfigDir() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userConfigDir, "modrules"), nil
}

// Catalog returns the catalog file to load: $MODRULES_CATALOG if set, else
// the user catalog in ConfigDir if it exists. An empty result selects the
// embedded catalog.
func Catalog() (string, error) {
	if file := os.Getenv(CatalogVar); file != "" {
		return file, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		// no home directory; fall back to the embedded catalog
		return "", nil
	}
	file := filepath.Join(dir, UserCatalogFile)
	if _, err := os.Stat(file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return file, nil
}

// LogLevel returns $MODRULES_LOG_LEVEL or DefaultLogLevel.
func LogLevel() string {
	return lookup(LogLevelVar, DefaultLogLevel)
}

// LogFormat returns $MODRULES_LOG_FORMAT or DefaultLogFormat.
func LogFormat() string {
	return lookup(LogFormatVar, DefaultLogFormat)
}

func lookup(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
