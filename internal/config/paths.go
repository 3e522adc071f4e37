package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/ratchet/internal/constants"
	"github.com/mrz1836/ratchet/internal/errors"
)

// GlobalConfigDir returns the global ratchet directory: $RATCHET_HOME when
// set, otherwise ~/.ratchet.
func GlobalConfigDir() (string, error) {
	if dir := os.Getenv(constants.HomeEnvVar); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.RatchetHome), nil
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// ProjectConfigPath returns the project configuration file for a repository root.
func ProjectConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, constants.RatchetHome, constants.ConfigFileName)
}
