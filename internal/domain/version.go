package domain

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/mrz1836/ratchet/internal/errors"
)

// Version is a semantic version triple, ordered lexicographically over
// (Major, Minor, Patch). Prerelease and build metadata are not part of a
// component's version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses a version in strict X.Y.Z form: no "v" prefix, no
// leading zeros, no prerelease or build metadata.
func ParseVersion(s string) (Version, error) {
	sv, err := semver.StrictNewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("%q must be in X.Y.Z format: %w", s, errors.ErrInvalidVersion)
	}
	if sv.Prerelease() != "" || sv.Metadata() != "" {
		return Version{}, fmt.Errorf("%q must be in X.Y.Z format without a suffix: %w", s, errors.ErrInvalidVersion)
	}
	return fromSemver(sv), nil
}

// MustParseVersion is like ParseVersion but panics on error.
// Use only for literals in tests and defaults.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the version as X.Y.Z.
func (v Version) String() string {
	return v.semver().String()
}

// Compare returns -1, 0, or 1 when v is lower than, equal to, or higher than o.
func (v Version) Compare(o Version) int {
	return v.semver().Compare(o.semver())
}

// Less reports whether v orders before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// NextMajor returns (Major+1).0.0.
func (v Version) NextMajor() Version {
	next := v.semver().IncMajor()
	return fromSemver(&next)
}

// NextMinor returns Major.(Minor+1).0.
func (v Version) NextMinor() Version {
	next := v.semver().IncMinor()
	return fromSemver(&next)
}

// NextPatch returns Major.Minor.(Patch+1).
func (v Version) NextPatch() Version {
	next := v.semver().IncPatch()
	return fromSemver(&next)
}

// MarshalText implements encoding.TextMarshaler so versions render as
// "X.Y.Z" in JSON output.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// semver converts v for arithmetic and ordering. Fields are never negative:
// every Version comes from ParseVersion or from bumping one.
func (v Version) semver() *semver.Version {
	return semver.New(uint64(v.Major), uint64(v.Minor), uint64(v.Patch), "", "") //nolint:gosec // fields are non-negative
}

func fromSemver(sv *semver.Version) Version {
	return Version{
		Major: int(sv.Major()), //nolint:gosec // parsed from decimal digits
		Minor: int(sv.Minor()), //nolint:gosec // parsed from decimal digits
		Patch: int(sv.Patch()), //nolint:gosec // parsed from decimal digits
	}
}
