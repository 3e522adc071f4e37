// Package cli provides the command-line interface for ratchet.
package cli

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/ratchet/internal/config"
	"github.com/mrz1836/ratchet/internal/domain"
	"github.com/mrz1836/ratchet/internal/errors"
	"github.com/mrz1836/ratchet/internal/tui"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates successful execution, including a dry run,
	// nothing to release, or a declined confirmation.
	ExitSuccess = 0
	// ExitError indicates a failed release or command.
	ExitError = 1
	// ExitInvalidInput indicates invalid user input.
	ExitInvalidInput = 2
)

// Output format constants.
const (
	// OutputText is the default human-readable output format.
	OutputText = tui.FormatText
	// OutputJSON is the machine-readable JSON output format.
	OutputJSON = tui.FormatJSON
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Output specifies the output format (text or json).
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
	// Repo is the repository to release from. Empty means the current directory.
	Repo string
}

// AddGlobalFlags adds global flags to a command.
// These flags are available to all subcommands via PersistentFlags.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.PersistentFlags().StringVar(&flags.Repo, "repo", "", "repository root (default: current directory)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags binds global flags to Viper for environment variable
// support. The RATCHET_ prefix is used (e.g., RATCHET_OUTPUT, RATCHET_REPO).
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	// Use Root().PersistentFlags() to find flags defined on the root command,
	// even when called from a subcommand's PersistentPreRunE.
	rootFlags := cmd.Root().PersistentFlags()

	for _, name := range []string{"output", "verbose", "quiet", "repo"} {
		if err := v.BindPFlag(name, rootFlags.Lookup(name)); err != nil {
			return err
		}
	}

	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()

	return nil
}

// applyBoundFlags copies values that may have come from the environment back
// into flags. Explicit command-line flags win because viper prefers them.
func applyBoundFlags(v *viper.Viper, flags *GlobalFlags) {
	flags.Output = v.GetString("output")
	flags.Verbose = v.GetBool("verbose")
	flags.Quiet = v.GetBool("quiet")
	flags.Repo = v.GetString("repo")
}

// ValidOutputFormats returns the list of valid output format values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat checks if the given format is a valid output format.
func IsValidOutputFormat(format string) bool {
	return tui.ValidFormat(format)
}

// BumpFlags selects how the requested components are bumped. Exactly one
// of them must be given.
type BumpFlags struct {
	Major   bool
	Minor   bool
	Patch   bool
	Version string
}

// addBumpFlags registers the bump policy flags on cmd.
func addBumpFlags(cmd *cobra.Command, flags *BumpFlags) {
	cmd.Flags().BoolVar(&flags.Major, "major", false, "bump the major version")
	cmd.Flags().BoolVar(&flags.Minor, "minor", false, "bump the minor version")
	cmd.Flags().BoolVar(&flags.Patch, "patch", false, "bump the patch version")
	cmd.Flags().StringVar(&flags.Version, "version", "", "set an explicit X.Y.Z version")
	cmd.MarkFlagsMutuallyExclusive("major", "minor", "patch", "version")
	cmd.MarkFlagsOneRequired("major", "minor", "patch", "version")
}

// Policy converts the flags into a bump policy. Errors are invalid input.
func (f BumpFlags) Policy() (domain.BumpPolicy, error) {
	set := 0
	for _, on := range []bool{f.Major, f.Minor, f.Patch, f.Version != ""} {
		if on {
			set++
		}
	}
	if set != 1 {
		return domain.BumpPolicy{}, errors.NewExitCode2Error(
			fmt.Errorf("%w: exactly one of --major, --minor, --patch or --version is required", errors.ErrConflictingFlags))
	}

	switch {
	case f.Major:
		return domain.BumpPolicy{Kind: domain.BumpMajor}, nil
	case f.Minor:
		return domain.BumpPolicy{Kind: domain.BumpMinor}, nil
	case f.Patch:
		return domain.BumpPolicy{Kind: domain.BumpPatch}, nil
	}

	v, err := domain.ParseVersion(f.Version)
	if err != nil {
		return domain.BumpPolicy{}, errors.NewExitCode2Error(err)
	}
	return domain.BumpPolicy{Kind: domain.BumpExplicit, Explicit: v}, nil
}

// ExitCodeForError returns the appropriate exit code for the given error.
// Returns ExitSuccess (0) for nil errors, ExitInvalidInput (2) for user input
// errors (invalid flags, bad arguments), and ExitError (1) for all other errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Check for our custom exit code 2 error wrapper
	if errors.IsExitCode2Error(err) {
		return ExitInvalidInput
	}

	for _, sentinel := range []error{
		errors.ErrInvalidOutputFormat,
		errors.ErrInvalidVersion,
		errors.ErrConflictingFlags,
		errors.ErrUnknownComponent,
		errors.ErrInvalidArgument,
	} {
		if stderrors.Is(err, sentinel) {
			return ExitInvalidInput
		}
	}

	// Check for Cobra flag parsing errors (mutually exclusive flags, unknown flags, etc.)
	if isInvalidInputError(err.Error()) {
		return ExitInvalidInput
	}

	return ExitError
}

// isInvalidInputError checks if an error message indicates invalid user input.
// This catches Cobra's built-in flag validation errors.
func isInvalidInputError(errMsg string) bool {
	invalidInputPatterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"if any flags in the group",
		"at least one of the flags in the group",
		"required flag",
		"unknown command",
		"arg(s), received",
		"arg(s), only received",
	}

	for _, pattern := range invalidInputPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
