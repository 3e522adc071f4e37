package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/ratchet/internal/config"
	"github.com/mrz1836/ratchet/internal/errors"
	"github.com/mrz1836/ratchet/internal/tui"
)

// AddDoctorCommand adds the doctor command to the root command.
func AddDoctorCommand(root *cobra.Command, global *GlobalFlags, deps *commandDeps) {
	root.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check that git, cargo, npm and docker are installed",
		Long: `Detect the external tools a release invokes and compare their versions
against the minimums ratchet needs. docker is only required for container
image builds and is reported as optional.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd.Context(), cmd, global, deps)
		},
	})
}

func runDoctor(ctx context.Context, cmd *cobra.Command, global *GlobalFlags, deps *commandDeps) error {
	ec, err := ResolveExecutionContext(ctx, global.Repo, false)
	if err != nil {
		return err
	}

	result, err := deps.newDetector(ec.Config.Tools).Detect(ctx)
	if err != nil {
		return fmt.Errorf("tool detection: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Bool("has_missing_required", result.HasMissingRequired).Msg("tool detection finished")

	out := tui.NewOutput(cmd.OutOrStdout(), global.Output)
	if global.Output == OutputJSON {
		if err := out.JSON(result); err != nil {
			return err
		}
	} else {
		out.Table(tui.ToolHeaders, tui.ToolRows(result))
	}

	missing := result.MissingRequiredTools()
	if len(missing) == 0 {
		if global.Output != OutputJSON {
			out.Success("All required tools are installed.")
		}
		return nil
	}
	if global.Output == OutputJSON {
		return fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, errors.ErrMissingTools)
	}
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), config.FormatMissingToolsError(missing))
	return errors.ErrMissingTools
}
