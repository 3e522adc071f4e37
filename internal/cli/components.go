package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mrz1836/ratchet/internal/tui"
)

// AddComponentsCommand adds the components command to the root command.
func AddComponentsCommand(root *cobra.Command, global *GlobalFlags) {
	root.AddCommand(&cobra.Command{
		Use:   "components",
		Short: "List the configured components and their verification builds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runComponents(cmd.Context(), cmd, global)
		},
	})
}

func runComponents(ctx context.Context, cmd *cobra.Command, global *GlobalFlags) error {
	ec, err := ResolveExecutionContext(ctx, global.Repo, false)
	if err != nil {
		return err
	}

	components := ec.Config.AllComponents()
	out := tui.NewOutput(cmd.OutOrStdout(), global.Output)
	if global.Output == OutputJSON {
		return out.JSON(components)
	}
	out.Table(tui.ComponentHeaders, tui.ComponentRows(components))
	return nil
}
