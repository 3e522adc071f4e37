package config

import (
	"github.com/mrz1836/ratchet/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - release.branch and release.remote must not be empty
//   - release.commit_template and release.tag_template must not be empty
//   - verification.timeout must not be negative
//   - every component needs a name and a manifest, and names are unique
//   - at most one component may be container-capable, and it needs a
//     dockerfile and an image
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateReleaseConfig(&cfg.Release); err != nil {
		return err
	}

	if cfg.Verification.Timeout < 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"verification.timeout must not be negative, got %s", cfg.Verification.Timeout)
	}

	return validateComponents(cfg.Components)
}

// validateReleaseConfig checks release-specific configuration values.
func validateReleaseConfig(cfg *ReleaseConfig) error {
	required := []struct {
		key   string
		value string
	}{
		{"release.branch", cfg.Branch},
		{"release.remote", cfg.Remote},
		{"release.commit_template", cfg.CommitTemplate},
		{"release.tag_template", cfg.TagTemplate},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.Wrapf(errors.ErrConfigInvalid, "%s must not be empty", r.key)
		}
	}
	return nil
}

// validateComponents checks the component list.
func validateComponents(components []ComponentConfig) error {
	seen := make(map[string]struct{}, len(components))
	containerOwner := ""

	for i, c := range components {
		if c.Name == "" {
			return errors.Wrapf(errors.ErrConfigInvalid, "components[%d].name must not be empty", i)
		}
		if _, dup := seen[c.Name]; dup {
			return errors.Wrapf(errors.ErrConfigInvalid, "component %q is defined more than once", c.Name)
		}
		seen[c.Name] = struct{}{}

		if c.Manifest == "" {
			return errors.Wrapf(errors.ErrConfigInvalid, "component %q has no manifest", c.Name)
		}

		if c.Container == nil {
			continue
		}
		if containerOwner != "" {
			return errors.Wrapf(errors.ErrConfigInvalid,
				"only one component may build a container image (%s and %s)", containerOwner, c.Name)
		}
		containerOwner = c.Name
		if c.Container.Dockerfile == "" || c.Container.Image == "" {
			return errors.Wrapf(errors.ErrConfigInvalid,
				"component %q container needs both dockerfile and image", c.Name)
		}
	}
	return nil
}
