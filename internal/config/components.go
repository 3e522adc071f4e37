package config

import (
	"fmt"
	"strings"

	"github.com/mrz1836/ratchet/internal/domain"
	"github.com/mrz1836/ratchet/internal/errors"
)

// ToComponent converts a component entry into its domain form.
func (c ComponentConfig) ToComponent() domain.Component {
	out := domain.Component{
		Name:           c.Name,
		Manifest:       c.Manifest,
		Package:        c.Package,
		Binary:         c.Binary,
		UIWorkspace:    c.UIWorkspace,
		EmbedUIFeature: c.EmbedUIFeature,
	}
	if c.Container != nil {
		out.Container = &domain.ContainerSpec{
			Dockerfile: c.Container.Dockerfile,
			Image:      c.Container.Image,
		}
	}
	return out
}

// AllComponents returns every configured component in configuration order.
func (c *Config) AllComponents() []domain.Component {
	out := make([]domain.Component, 0, len(c.Components))
	for _, cc := range c.Components {
		out = append(out, cc.ToComponent())
	}
	return out
}

// ComponentNames returns the configured component names in configuration order.
func (c *Config) ComponentNames() []string {
	names := make([]string, 0, len(c.Components))
	for _, cc := range c.Components {
		names = append(names, cc.Name)
	}
	return names
}

// Lookup resolves component names in the order given. Duplicates are passed
// through so the planner can collapse them. Any unknown name fails the whole
// lookup with ErrUnknownComponent, listing every unknown name.
func (c *Config) Lookup(names []string) ([]domain.Component, error) {
	byName := make(map[string]ComponentConfig, len(c.Components))
	for _, cc := range c.Components {
		byName[cc.Name] = cc
	}

	out := make([]domain.Component, 0, len(names))
	var unknown []string
	for _, name := range names {
		cc, ok := byName[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		out = append(out, cc.ToComponent())
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s (available: %s)", errors.ErrUnknownComponent,
			strings.Join(unknown, ", "), strings.Join(c.ComponentNames(), ", "))
	}
	return out, nil
}
