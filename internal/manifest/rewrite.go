package manifest

import (
	"bytes"
	"fmt"

	"github.com/mrz1836/ratchet/internal/domain"
	"github.com/mrz1836/ratchet/internal/errors"
)

const (
	packageSection = "package"
	versionKey     = "version"
)

// scanState is the cursor of the version patcher relative to [package].
type scanState int

const (
	beforeSection scanState = iota
	inSection
	afterSection
)

// Rewrite returns content with the [package] version value replaced by v.
// Only the bytes between the value's quotes change. The input is never
// modified; on error the returned slice is nil.
func Rewrite(content []byte, v domain.Version) ([]byte, error) {
	lines := bytes.SplitAfter(content, []byte("\n"))
	state := beforeSection

	for i, line := range lines {
		trimmed := bytes.TrimSpace(line)

		if marker, ok := sectionMarker(trimmed); ok {
			if state == inSection {
				state = afterSection
				break
			}
			if state == beforeSection && sectionName(marker) == packageSection {
				state = inSection
			}
			continue
		}

		if state != inSection || !isVersionLine(trimmed) {
			continue
		}

		patched, err := replaceValue(line, v.String())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		out := make([]byte, 0, len(content)+len(patched)-len(line))
		for j, l := range lines {
			if j == i {
				out = append(out, patched...)
				continue
			}
			out = append(out, l...)
		}
		return out, nil
	}

	if state == beforeSection {
		return nil, fmt.Errorf("no [%s] section: %w", packageSection, errors.ErrManifest)
	}
	return nil, fmt.Errorf("no %s field in [%s] section: %w", versionKey, packageSection, errors.ErrManifest)
}

// sectionMarker returns the bracketed marker of a trimmed line that opens a
// table or array of tables, with any trailing comment removed.
func sectionMarker(trimmed []byte) ([]byte, bool) {
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	if idx := bytes.IndexByte(trimmed, '#'); idx >= 0 {
		trimmed = bytes.TrimSpace(trimmed[:idx])
	}
	if len(trimmed) < 2 || trimmed[len(trimmed)-1] != ']' {
		return nil, false
	}
	return trimmed, true
}

// sectionName extracts the table name from a marker.
// Array-of-tables markers ([[bin]]) never name the package section.
func sectionName(trimmed []byte) string {
	if bytes.HasPrefix(trimmed, []byte("[[")) {
		return ""
	}
	return string(bytes.TrimSpace(trimmed[1 : len(trimmed)-1]))
}

// isVersionLine reports whether a trimmed line assigns exactly the version key.
// Dotted keys such as version.workspace are not matched.
func isVersionLine(trimmed []byte) bool {
	rest, ok := bytes.CutPrefix(trimmed, []byte(versionKey))
	if !ok {
		return false
	}
	rest = bytes.TrimLeft(rest, " \t")
	return len(rest) > 0 && rest[0] == '='
}

// replaceValue swaps the quoted string after '=' for value, keeping the
// indentation, spacing, trailing comment, and line terminator.
func replaceValue(line []byte, value string) ([]byte, error) {
	eq := bytes.IndexByte(line, '=')
	open := eq + 1
	for open < len(line) && (line[open] == ' ' || line[open] == '\t') {
		open++
	}
	if open >= len(line) || (line[open] != '"' && line[open] != '\'') {
		return nil, fmt.Errorf("%s is not a quoted string: %w", versionKey, errors.ErrManifest)
	}

	quote := line[open]
	closeIdx := bytes.IndexByte(line[open+1:], quote)
	if closeIdx < 0 {
		return nil, fmt.Errorf("unterminated %s string: %w", versionKey, errors.ErrManifest)
	}
	closeIdx += open + 1

	out := make([]byte, 0, len(line)+len(value))
	out = append(out, line[:open+1]...)
	out = append(out, value...)
	out = append(out, line[closeIdx:]...)
	return out, nil
}
