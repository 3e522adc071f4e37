package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// Order matters: the first entry matched by errors.Is() wins, so more
// specific sentinels come before broader ones.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Release taxonomy
	// ===================
	{
		err: ErrPush,
		info: ErrorInfo{
			Message: "The atomic push failed. Local commits and tags were kept.",
			Action:  "Verify the remote state manually (git ls-remote --tags) before retrying the push.",
		},
	},
	{
		err: ErrRollbackIncomplete,
		info: ErrorInfo{
			Message: "The release failed and rollback did not complete cleanly.",
			Action:  "Inspect the repository manually: check 'git tag' and 'git log' against the actions listed above.",
		},
	},
	{
		err: ErrPrecondition,
		info: ErrorInfo{
			Message: "The repository is not ready for a release. Nothing was changed.",
			Action:  "Commit or stash local changes and switch to the release branch.",
		},
	},
	{
		err: ErrManifest,
		info: ErrorInfo{
			Message: "A component manifest has no usable [package] version.",
			Action:  "Add a quoted X.Y.Z version field to the manifest's [package] section.",
		},
	},
	{
		err: ErrVerification,
		info: ErrorInfo{
			Message: "A verification step failed. The release was rolled back.",
			Action:  "Fix the issues reported by the failing command and run the release again.",
		},
	},
	{
		err: ErrTransaction,
		info: ErrorInfo{
			Message: "A git operation failed during the release. The release was rolled back.",
			Action:  "Review the git error output above and check repository permissions.",
		},
	},
	{
		err: ErrInvalidTransition,
		info: ErrorInfo{
			Message: "The release coordinator reached an unexpected state.",
			Action:  "Report this as a bug together with the log file.",
		},
	},

	// ===================
	// Git
	// ===================
	{
		err: ErrNotGitRepo,
		info: ErrorInfo{
			Message: "This command must be run from within a git repository.",
			Action:  "Navigate to the repository root or pass --repo.",
		},
	},
	{
		err: ErrDetachedHead,
		info: ErrorInfo{
			Message: "HEAD is detached.",
			Action:  "Check out the release branch before releasing.",
		},
	},
	{
		err: ErrGitOperation,
		info: ErrorInfo{
			Message: "Git operation failed. Check your repository state.",
			Action:  "Ensure you have a clean git state and proper permissions.",
		},
	},

	// ===================
	// Configuration & input
	// ===================
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "Configuration is not loaded.",
			Action:  "Ensure .ratchet/config.yaml is valid YAML.",
		},
	},
	{
		err: ErrConfigInvalid,
		info: ErrorInfo{
			Message: "Invalid configuration.",
			Action:  "Run 'ratchet config show' and fix the reported key.",
		},
	},
	{
		err: ErrUnknownComponent,
		info: ErrorInfo{
			Message: "The requested component is not configured.",
			Action:  "Run 'ratchet components' to see available components.",
		},
	},
	{
		err: ErrInvalidVersion,
		info: ErrorInfo{
			Message: "Versions must be in X.Y.Z format.",
			Action:  "Pass a version such as --version 1.4.0.",
		},
	},
	{
		err: ErrConflictingFlags,
		info: ErrorInfo{
			Message: "The specified flags cannot be used together.",
			Action:  "Check the command help for valid flag combinations.",
		},
	},
	{
		err: ErrInvalidArgument,
		info: ErrorInfo{
			Message: "An invalid argument was provided.",
			Action:  "Check the command help for valid arguments.",
		},
	},
	{
		err: ErrMissingTools,
		info: ErrorInfo{
			Message: "Required tools are missing or outdated.",
			Action:  "Install the tools listed above, or point tools.* in the config at them.",
		},
	},
	{
		err: ErrEmptyValue,
		info: ErrorInfo{
			Message: "A required value was not provided.",
			Action:  "Provide the required value and try again.",
		},
	},

	// ===================
	// User interaction
	// ===================
	{
		err: ErrOperationCanceled,
		info: ErrorInfo{
			Message: "Operation was canceled.",
			Action:  "",
		},
	},
	{
		err: ErrInteractiveRequired,
		info: ErrorInfo{
			Message: "This release needs confirmation but stdin ended without an answer.",
			Action:  "Run in an interactive terminal, pipe in \"y\", or pass --yes.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// It first tries a direct map lookup for unwrapped sentinel errors,
// then falls back to errors.Is() traversal for wrapped errors.
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
