// Package constants provides centralized constant values used throughout ratchet.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names and paths used by ratchet.
const (
	// RatchetHome is the hidden directory name where ratchet stores its data.
	// It exists both in the user's home directory and at the repository root.
	RatchetHome = ".ratchet"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"
)

// Repository defaults for the release transaction.
const (
	// DefaultReleaseBranch is the only branch a release may start from.
	DefaultReleaseBranch = "master"

	// DefaultRemote is the remote the atomic push targets.
	DefaultRemote = "origin"

	// DefaultLockfile is staged alongside every manifest bump because the
	// Cargo workspace lockfile records each member's version.
	DefaultLockfile = "Cargo.lock"

	// DefaultCommitTemplate renders the release commit message.
	// Placeholders: {component}, {version}.
	DefaultCommitTemplate = "chore({component}): bump version to {version}"

	// DefaultTagTemplate renders the release tag name.
	DefaultTagTemplate = "{component}-v{version}"

	// DefaultManifestPattern locates a component manifest relative to the repository root.
	DefaultManifestPattern = "services/{component}/Cargo.toml"
)

// Build tool defaults.
const (
	// DefaultCargo is the Rust build tool used for release builds.
	DefaultCargo = "cargo"

	// DefaultNPM is the package manager used for UI workspace checks.
	DefaultNPM = "npm"

	// DefaultDocker is the container image builder.
	DefaultDocker = "docker"

	// DefaultGit is the version-control binary.
	DefaultGit = "git"

	// DefaultEmbedUIFeature is the cargo feature that embeds built UI assets.
	DefaultEmbedUIFeature = "embed-ui"

	// LatestImageTag is the floating tag applied to every container image build.
	LatestImageTag = "latest"
)

// Timeouts.
const (
	// ToolDetectionTimeout bounds the doctor command's version checks.
	ToolDetectionTimeout = 10 * time.Second
)

// Minimum tool versions checked by the doctor command.
const (
	// MinVersionGit is the oldest git with reliable `push --atomic` support.
	MinVersionGit = "2.4.0"

	// MinVersionCargo is the oldest cargo accepting --bin together with --package.
	MinVersionCargo = "1.60.0"

	// MinVersionNPM is the oldest npm with workspace support.
	MinVersionNPM = "7.0.0"

	// VersionFlagStandard is the flag every checked tool accepts.
	VersionFlagStandard = "--version"
)
