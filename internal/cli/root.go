package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/ratchet/internal/errors"
	"github.com/mrz1836/ratchet/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// This is set during PersistentPreRunE and should be accessed via GetLogger.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands.
//
// It MUST only be called after the root command's PersistentPreRunE has
// executed. Before that it returns a zero-value logger that discards output.
// Subcommands usually prefer zerolog.Ctx(cmd.Context()), which carries the
// same logger.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// newRootCmd creates the root command with the production collaborators.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	return newRootCmdWithDeps(flags, info, productionDeps())
}

// newRootCmdWithDeps creates the root command. deps supplies the git runner,
// verifier, confirmer and tool detector the subcommands drive.
func newRootCmdWithDeps(flags *GlobalFlags, info BuildInfo, deps *commandDeps) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "ratchet",
		Short: "Atomic multi-component release coordinator",
		Long: `ratchet releases independently-versioned components of one repository
as a single atomic operation.

For each requested component it bumps the manifest version, runs the
component's verification builds, commits and tags. Only when every
component succeeded are the commits and tags pushed together with
'git push --atomic'. Any failure before the push restores the repository
to the revision it started from.`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}
			applyBoundFlags(v, flags)

			if !IsValidOutputFormat(flags.Output) {
				return errors.NewExitCode2Error(
					fmt.Errorf("%w: %q must be one of %v", errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats()))
			}
			tui.CheckNoColor()

			logger := deps.initLogger(flags.Verbose, flags.Quiet)
			globalLoggerMu.Lock()
			globalLogger = logger
			globalLoggerMu.Unlock()

			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)

	AddReleaseCommand(cmd, flags, deps)
	AddPlanCommand(cmd, flags, deps)
	AddComponentsCommand(cmd, flags)
	AddDoctorCommand(cmd, flags, deps)
	AddConfigCommand(cmd, flags)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
// A returned error has already been printed.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info)
	defer CloseLogFile()

	err := cmd.ExecuteContext(ctx)
	reportError(cmd.ErrOrStderr(), flags.Output, err)
	return err
}

// reportError prints err once. Errors already rendered as a JSON result
// document are not printed again.
func reportError(w io.Writer, format string, err error) {
	if err == nil || stderrors.Is(err, errors.ErrJSONErrorOutput) {
		return
	}
	if !IsValidOutputFormat(format) {
		format = OutputText
	}
	tui.NewOutput(w, format).Error(err)
}
