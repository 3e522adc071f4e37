package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/ratchet/internal/config"
	"github.com/mrz1836/ratchet/internal/tui"
)

// AddConfigCommand adds the config command and its subcommands.
func AddConfigCommand(root *cobra.Command, global *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect ratchet configuration",
	}
	cmd.AddCommand(newConfigShowCmd(global))
	root.AddCommand(cmd)
}

func newConfigShowCmd(global *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the configuration after merging, in order of precedence:

  - RATCHET_* environment variables
  - <repo>/.ratchet/config.yaml
  - ~/.ratchet/config.yaml
  - built-in defaults

The output is valid YAML and can be copied into a config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd, global)
		},
	}
}

func runConfigShow(ctx context.Context, cmd *cobra.Command, global *GlobalFlags) error {
	ec, err := ResolveExecutionContext(ctx, global.Repo, false)
	if err != nil {
		return err
	}

	data, err := marshalConfigYAML(ec.Config)
	if err != nil {
		return err
	}

	if global.Output == OutputJSON {
		// Round-trip through YAML so JSON keys match the config file keys.
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}
		return tui.NewOutput(cmd.OutOrStdout(), OutputJSON).JSON(doc)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// marshalConfigYAML renders cfg with its project-file key names.
func marshalConfigYAML(cfg *config.Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to render configuration: %w", err)
	}
	return data, nil
}
