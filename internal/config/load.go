package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/ratchet/internal/errors"
)

// EnvPrefix is the prefix of every environment variable ratchet reads.
const EnvPrefix = "RATCHET"

// newViperInstance creates a new Viper instance with standard ratchet configuration.
// This includes environment variable prefix (RATCHET_), key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(ctx context.Context, v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "failed to unmarshal config: "+err.Error())
	}
	applyComponentDefaults(&cfg)

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("release.branch", cfg.Release.Branch).
		Str("release.remote", cfg.Release.Remote).
		Dur("verification.timeout", cfg.Verification.Timeout).
		Int("components", len(cfg.Components)).
		Msg("configuration loaded and unmarshaled")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (RATCHET_* prefix)
//  2. Project config (<repoRoot>/.ratchet/config.yaml)
//  3. Global config (~/.ratchet/config.yaml)
//  4. Built-in defaults
//
// Missing config files are not an error.
func Load(ctx context.Context, repoRoot string) (*Config, error) {
	globalPath, err := GlobalConfigPath()
	if err != nil {
		// No home directory: run on project config and defaults only.
		globalPath = ""
	}
	return LoadFromPaths(ctx, ProjectConfigPath(repoRoot), globalPath)
}

// LoadFromPaths loads configuration from specific file paths.
//
// projectConfigPath is the path to project-level config (higher priority).
// globalConfigPath is the path to global config (lower priority).
// Either path can be empty to skip that level; paths that do not exist are skipped.
func LoadFromPaths(ctx context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	// Load global config first (lower precedence)
	if fileExists(globalConfigPath) {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrapf(errors.ErrConfigInvalid, "failed to read global config %s: %s", globalConfigPath, err)
		}
	}

	// Load project config (higher precedence, merges over global)
	if fileExists(projectConfigPath) {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrapf(errors.ErrConfigInvalid, "failed to read project config %s: %s", projectConfigPath, err)
		}
	}

	return unmarshalAndValidate(ctx, v)
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// setDefaults configures all default values on the Viper instance.
// These defaults match the values from DefaultConfig(); components are
// filled after unmarshal because viper cannot default a list of structs per key.
// IMPORTANT: Keys must match the YAML tag names exactly for proper mapping.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("release.branch", d.Release.Branch)
	v.SetDefault("release.remote", d.Release.Remote)
	v.SetDefault("release.lockfile", d.Release.Lockfile)
	v.SetDefault("release.commit_template", d.Release.CommitTemplate)
	v.SetDefault("release.tag_template", d.Release.TagTemplate)

	v.SetDefault("verification.timeout", "0s")
	v.SetDefault("verification.live_output", d.Verification.LiveOutput)

	v.SetDefault("tools.cargo", d.Tools.Cargo)
	v.SetDefault("tools.npm", d.Tools.NPM)
	v.SetDefault("tools.docker", d.Tools.Docker)
	v.SetDefault("tools.git", d.Tools.Git)
}

// viperDecoderOption returns the decoder options for Viper unmarshal.
// This configures mapstructure to handle time.Duration conversion from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
