package manifest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ratchet/internal/domain"
	"github.com/mrz1836/ratchet/internal/errors"
)

func TestRewrite(t *testing.T) {
	v := domain.MustParseVersion("1.2.4")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name: "authors before version",
			input: "[package]\n" +
				"name = \"streamer\"\n" +
				"authors = [\"iwismer <isaac@iwismer.ca>\"]\n" +
				"version = \"1.2.3\"\n" +
				"edition = \"2021\"\n" +
				"\n" +
				"[dependencies]\n" +
				"tokio = \"1\"\n",
			want: "[package]\n" +
				"name = \"streamer\"\n" +
				"authors = [\"iwismer <isaac@iwismer.ca>\"]\n" +
				"version = \"1.2.4\"\n" +
				"edition = \"2021\"\n" +
				"\n" +
				"[dependencies]\n" +
				"tokio = \"1\"\n",
		},
		{
			name:  "crlf line endings",
			input: "[package]\r\nname = \"server\"\r\nversion = \"0.1.0\"\r\n\r\n[dependencies]\r\n",
			want:  "[package]\r\nname = \"server\"\r\nversion = \"1.2.4\"\r\n\r\n[dependencies]\r\n",
		},
		{
			name:  "no trailing newline",
			input: "[package]\nname = \"x\"\nversion = \"0.0.1\"",
			want:  "[package]\nname = \"x\"\nversion = \"1.2.4\"",
		},
		{
			name:  "indentation spacing and comment kept",
			input: "[package]\n\tversion   =  \"0.9.0\"  # managed by ratchet\n",
			want:  "[package]\n\tversion   =  \"1.2.4\"  # managed by ratchet\n",
		},
		{
			name:  "dependency versions in earlier sections untouched",
			input: "[workspace.package]\nversion = \"9.9.9\"\n\n[package]\nname = \"a\"\nversion = \"0.1.0\"\n[dependencies.serde]\nversion = \"1.0\"\n",
			want:  "[workspace.package]\nversion = \"9.9.9\"\n\n[package]\nname = \"a\"\nversion = \"1.2.4\"\n[dependencies.serde]\nversion = \"1.0\"\n",
		},
		{
			name:  "marker with trailing comment",
			input: "[package] # main\nversion = \"0.1.0\"\n",
			want:  "[package] # main\nversion = \"1.2.4\"\n",
		},
		{
			name:  "only first version line in section",
			input: "[package]\nversion = \"0.1.0\"\nversion = \"0.1.0\"\n",
			want:  "[package]\nversion = \"1.2.4\"\nversion = \"0.1.0\"\n",
		},
		{
			name:  "single quoted literal",
			input: "[package]\nversion = '0.1.0'\n",
			want:  "[package]\nversion = '1.2.4'\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := []byte(tc.input)
			original := bytes.Clone(input)

			got, err := Rewrite(input, v)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
			assert.Equal(t, original, input, "input must not be modified")
		})
	}
}

func TestRewrite_Errors(t *testing.T) {
	v := domain.MustParseVersion("1.0.0")

	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"no package section", "[dependencies]\nversion = \"1\"\n", "no [package] section"},
		{"version after package section", "[package]\nname = \"a\"\n[lib]\nversion = \"0.1.0\"\n", "no version field"},
		{"empty file", "", "no [package] section"},
		{"workspace inherited version", "[package]\nversion.workspace = true\n", "no version field"},
		{"versioned key is not version", "[package]\nversioned = \"0.1.0\"\n", "no version field"},
		{"unquoted value", "[package]\nversion = 1\n", "not a quoted string"},
		{"unterminated string", "[package]\nversion = \"0.1.0\n", "unterminated"},
		{"array of tables named package", "[[package]]\nversion = \"0.1.0\"\n", "no [package] section"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Rewrite([]byte(tc.input), v)
			require.ErrorIs(t, err, errors.ErrManifest)
			assert.Contains(t, err.Error(), tc.contains)
			assert.Nil(t, got)
		})
	}
}

func TestRewrite_OnlyVersionLineChanges(t *testing.T) {
	input := "# top comment\r\n[package]\n  name = \"receiver\"\r\n  version = \"3.4.5\"\n\n[features]\nembed-ui = []\n"

	got, err := Rewrite([]byte(input), domain.MustParseVersion("3.5.0"))
	require.NoError(t, err)

	before := bytes.SplitAfter([]byte(input), []byte("\n"))
	after := bytes.SplitAfter(got, []byte("\n"))
	require.Len(t, after, len(before))

	for i := range before {
		if i == 3 {
			assert.Equal(t, "  version = \"3.5.0\"\n", string(after[i]))
			continue
		}
		assert.Equal(t, before[i], after[i], "line %d changed", i+1)
	}
}
