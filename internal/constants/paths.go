package constants

// Log file names.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.ratchet/logs/ratchet.log
	CLILogFileName = "ratchet.log"
)

// HomeEnvVar overrides the ~/.ratchet directory holding the global config
// and the CLI log.
const HomeEnvVar = "RATCHET_HOME"

// Configuration file names.
const (
	// ConfigFileName is the name of both the global and the project config file.
	ConfigFileName = "config.yaml"
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the size in megabytes at which the log file rotates.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files to keep.
	LogMaxBackups = 5

	// LogMaxAgeDays is the maximum age of a rotated file.
	LogMaxAgeDays = 30

	// LogCompress enables gzip compression of rotated files.
	LogCompress = true
)
