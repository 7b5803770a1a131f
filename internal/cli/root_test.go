package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/assfilter/internal/prompt"
)

const sampleScript = "../../testdata/scripts/sample.ass"

// executeCommand is a test helper that runs the CLI with the given args and
// captures both stdout and stderr.
func executeCommand(args ...string) (stdout, stderr string, err error) {
	return executeCommandWithInput("", args...)
}

// executeCommandWithInput is executeCommand with stdin set to input.
func executeCommandWithInput(input string, args ...string) (stdout, stderr string, err error) {
	cmd := NewRootCommand()
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()

	return outBuf.String(), errBuf.String(), err
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()

	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, code, exitErr.Code)
}

// readOutput reads a written script and strips the byte-order mark.
func readOutput(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path) //nolint:gosec // test file
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "output must start with a UTF-8 BOM")

	return string(data[3:])
}

func readSample(t *testing.T) string {
	t.Helper()

	data, err := os.ReadFile(sampleScript)
	require.NoError(t, err)

	return string(data)
}

// ---------------------------------------------------------------------------
// Help output
// ---------------------------------------------------------------------------

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	require.NoError(t, err)

	for _, sub := range []string{"inspect", "watch", "version", "completion"} {
		assert.Contains(t, stdout, sub, "help should mention %q subcommand", sub)
	}

	for _, flag := range []string{
		"--config", "--log-level", "--log-format", "--no-color", "--quiet",
		"--exclude-styles", "--exclude-style-indices", "--exclude-layers", "--profile",
		"--dry-run", "--diff", "--summary",
	} {
		assert.Contains(t, stdout, flag, "help should mention %q flag", flag)
	}
}

// ---------------------------------------------------------------------------
// Usage errors → exit code 2
// ---------------------------------------------------------------------------

func TestRootCommand_UnknownFlag(t *testing.T) {
	_, _, err := executeCommand("--nonexistent")
	requireExitCode(t, err, 2)
}

func TestRootCommand_SilenceErrors(t *testing.T) {
	_, stderr, err := executeCommand("--nonexistent")
	require.Error(t, err)
	assert.Empty(t, stderr, "cobra should not print errors to stderr (SilenceErrors)")
}

func TestRootCommand_ArgCount(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"none", nil},
		{"one", []string{sampleScript}},
		{"three", []string{sampleScript, "a.ass", "b.ass"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(tt.args...)
			requireExitCode(t, err, 2)
		})
	}
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	_, _, err := executeCommand("--config", "/nonexistent/path.yaml", "inspect", sampleScript)
	requireExitCode(t, err, 2)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	_, _, err := executeCommand("--log-level", "trace", "inspect", sampleScript)
	requireExitCode(t, err, 2)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestRootCommand_InvalidLogFormat(t *testing.T) {
	_, _, err := executeCommand("--log-format", "xml", "inspect", sampleScript)
	requireExitCode(t, err, 2)
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestRootCommand_UnknownProfile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.ass")

	_, _, err := executeCommand("-q", "--profile", "nope", sampleScript, out)
	requireExitCode(t, err, 2)
	assert.Contains(t, err.Error(), `unknown profile "nope"`)
	assert.NoFileExists(t, out)
}

// ---------------------------------------------------------------------------
// Interactive filtering
// ---------------------------------------------------------------------------

func TestFilter_InteractiveTranscript(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.ass")

	stdout, _, err := executeCommandWithInput("1\n5\n", "-q", sampleScript, out)
	require.NoError(t, err)

	want := "styles:\n#0 - Default\n#1 - Sign\n#2 - OP\n" +
		prompt.StylesQuestion + "\n> " +
		"layers:\n0, 1, 5\n" +
		prompt.LayersQuestion + "\n> "
	assert.Equal(t, want, stdout)

	got := readOutput(t, out)
	assert.NotContains(t, got, "STATION")
	assert.NotContains(t, got, "{\\k20}La")
	assert.Contains(t, got, "Where are we going?")
	assert.Contains(t, got, "Home, I think.")
	assert.Contains(t, got, "check timing")
	// Styles are kept even when all their events are removed.
	assert.Contains(t, got, "Style: Sign,")
}

func TestFilter_InteractiveNoneKeepsEverything(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.ass")

	_, _, err := executeCommandWithInput("none\nnone\n", "-q", sampleScript, out)
	require.NoError(t, err)

	assert.Equal(t, readSample(t), readOutput(t, out))
}

func TestFilter_InteractiveEOFFails(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"closed stdin", ""},
		{"no layer answer", "none\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.ass")

			_, _, err := executeCommandWithInput(tt.input, "-q", sampleScript, out)
			requireExitCode(t, err, 2)
			assert.ErrorIs(t, err, prompt.ErrNoAnswer)
			assert.NoFileExists(t, out)
		})
	}
}

func TestFilter_InteractiveUnterminatedLastAnswer(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.ass")

	_, _, err := executeCommandWithInput("none\n5", "-q", sampleScript, out)
	require.NoError(t, err)

	got := readOutput(t, out)
	assert.NotContains(t, got, "{\\k20}La")
	assert.Contains(t, got, "STATION")
}

func TestFilter_InteractiveBadAnswers(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"style index out of range", "7\n"},
		{"style index not a number", "Sign\n"},
		{"layer not a number", "none\ntop\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.ass")

			_, _, err := executeCommandWithInput(tt.input, "-q", sampleScript, out)
			requireExitCode(t, err, 2)
			assert.NoFileExists(t, out)
		})
	}
}

// ---------------------------------------------------------------------------
// Non-interactive filtering
// ---------------------------------------------------------------------------

func TestFilter_Flags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		removed []string
		kept    []string
	}{
		{
			name:    "style names",
			args:    []string{"--exclude-styles", "Sign,OP"},
			removed: []string{"STATION", "{\\k20}La"},
			kept:    []string{"Where are we going?", "check timing"},
		},
		{
			name:    "style indices",
			args:    []string{"--exclude-style-indices", " 0"},
			removed: []string{"Where are we going?", "Home, I think.", "check timing"},
			kept:    []string{"STATION", "{\\k20}La"},
		},
		{
			name:    "layers",
			args:    []string{"--exclude-layers", "1,5"},
			removed: []string{"STATION", "{\\k20}La"},
			kept:    []string{"Where are we going?"},
		},
		{
			name:    "layer not in script",
			args:    []string{"--exclude-layers", "99"},
			removed: nil,
			kept:    []string{"Where are we going?", "STATION", "{\\k20}La"},
		},
		{
			name:    "builtin profile",
			args:    []string{"--profile", "no-comments"},
			removed: []string{"check timing"},
			kept:    []string{"Where are we going?", "STATION"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.ass")

			args := append([]string{"-q", sampleScript, out}, tt.args...)

			stdout, _, err := executeCommandWithInput("should not be read", args...)
			require.NoError(t, err)
			assert.Empty(t, stdout, "flags must skip the prompts")

			got := readOutput(t, out)
			for _, s := range tt.removed {
				assert.NotContains(t, got, s)
			}

			for _, s := range tt.kept {
				assert.Contains(t, got, s)
			}
		})
	}
}

func TestFilter_UnknownStyleName(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.ass")

	_, _, err := executeCommand("-q", sampleScript, out, "--exclude-styles", "Karaoke")
	requireExitCode(t, err, 2)
	assert.Contains(t, err.Error(), "Karaoke")
}

func TestFilter_ProfileFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "assfilter.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`profiles:
  clean:
    excludeStyles: [Sign]
    extends: no-comments
`), 0o600))

	out := filepath.Join(dir, "out.ass")

	_, _, err := executeCommand("-q", "--config", cfgPath, "--profile", "clean", sampleScript, out)
	require.NoError(t, err)

	got := readOutput(t, out)
	assert.NotContains(t, got, "STATION")
	assert.NotContains(t, got, "check timing")
	assert.Contains(t, got, "Home, I think.")
}

func TestFilter_MissingInput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.ass")

	_, _, err := executeCommand("-q", "/nonexistent/in.ass", out, "--exclude-layers", "0")
	requireExitCode(t, err, 1)
	assert.Contains(t, err.Error(), "opening")
}

func TestFilter_MalformedInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.ass")
	require.NoError(t, os.WriteFile(in, []byte("not a subtitle script\n"), 0o600))

	out := filepath.Join(dir, "out.ass")

	_, _, err := executeCommand("-q", in, out, "--exclude-layers", "0")
	requireExitCode(t, err, 1)
	assert.NoFileExists(t, out)
}

func TestFilter_InvalidUTF8Input(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.ass")
	script := "[Script Info]\nTitle: caf\xe9\n\n[Events]\n" +
		"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n" +
		"Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,Je suis d\xe9sol\xe9\n"
	require.NoError(t, os.WriteFile(in, []byte(script), 0o600))

	out := filepath.Join(dir, "out.ass")

	_, _, err := executeCommand("-q", in, out, "--exclude-layers", "7")
	requireExitCode(t, err, 1)
	assert.Contains(t, err.Error(), "invalid UTF-8")
	assert.NoFileExists(t, out)
}

func TestFilter_CreatesOutputDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "dir", "out.ass")

	_, _, err := executeCommand("-q", sampleScript, out, "--exclude-layers", "5")
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestFilter_DryRunSummaryDiff(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.ass")

	stdout, _, err := executeCommand("-q", "--no-color", sampleScript, out,
		"--exclude-styles", "Sign", "--exclude-layers", "5",
		"--dry-run", "--summary", "--diff")
	require.NoError(t, err)
	assert.NoFileExists(t, out)

	assert.Contains(t, stdout, "--- "+sampleScript)
	assert.Contains(t, stdout, "+++ "+out)
	assert.Contains(t, stdout, "-Dialogue: 1,0:00:02.00,0:00:04.00,Sign,,0,0,0,,{\\pos(960,80)}STATION")
	assert.NotContains(t, stdout, "\x1b[", "no ANSI codes with --no-color")

	assert.Contains(t, stdout, "kept 3 of 5 events, removed 2")
	assert.Contains(t, stdout, "excluded by style: Sign")
	assert.Contains(t, stdout, "excluded by layer: 5")
}

func TestFilter_DiffNothingRemoved(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.ass")

	stdout, _, err := executeCommand("-q", sampleScript, out, "--exclude-layers", "none", "--dry-run", "--diff")
	require.NoError(t, err)
	assert.Equal(t, "no events removed\n", stdout)
}

func TestFilter_PreservesCRLF(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.ass")
	crlf := strings.ReplaceAll(readSample(t), "\n", "\r\n")
	require.NoError(t, os.WriteFile(in, []byte(crlf), 0o600))

	out := filepath.Join(dir, "out.ass")

	_, _, err := executeCommand("-q", in, out, "--exclude-layers", "none")
	require.NoError(t, err)
	assert.Equal(t, crlf, readOutput(t, out))
}

// ---------------------------------------------------------------------------
// Execute helper
// ---------------------------------------------------------------------------

func TestExecute_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"version", []string{"version"}, 0},
		{"usage", []string{"--nonexistent"}, 2},
		{"io", []string{"-q", "inspect", "/nonexistent/in.ass"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCommand()
			cmd.SetArgs(tt.args)
			cmd.SetOut(io.Discard)

			var stderr bytes.Buffer

			assert.Equal(t, tt.want, execute(cmd, &stderr))

			if tt.want != 0 {
				assert.True(t, strings.HasPrefix(stderr.String(), "Error: "))
			}
		})
	}
}

// ---------------------------------------------------------------------------
// ExitError
// ---------------------------------------------------------------------------

func TestExitError_ErrorWithMessage(t *testing.T) {
	err := &ExitError{Code: 1, Err: assert.AnError}
	assert.Contains(t, err.Error(), assert.AnError.Error())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestExitError_ErrorWithoutMessage(t *testing.T) {
	err := &ExitError{Code: 42}
	assert.Equal(t, "exit code 42", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestRunError(t *testing.T) {
	assert.NoError(t, runError(nil))

	var exitErr *ExitError

	require.ErrorAs(t, runError(assert.AnError), &exitErr)
	assert.Equal(t, 1, exitErr.Code)

	require.ErrorAs(t, runError(usageError(assert.AnError)), &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestFilter_Stdout(t *testing.T) {
	stdout, _, err := executeCommand("-q", sampleScript, "-", "--exclude-styles", "OP")
	require.NoError(t, err)

	assert.False(t, strings.HasPrefix(stdout, "\ufeff"), "stdout output carries no BOM")
	assert.True(t, strings.HasPrefix(stdout, "[Script Info]\n"))
	assert.NotContains(t, stdout, "{\\k20}La")
}

func TestFilter_StdoutRequiresSelection(t *testing.T) {
	_, _, err := executeCommandWithInput("0\n0\n", "-q", sampleScript, "-")
	requireExitCode(t, err, 2)
	assert.ErrorIs(t, err, errStdoutNeedsSelection)
}

func TestFilter_StdoutReportsGoToStderr(t *testing.T) {
	stdout, stderr, err := executeCommand("-q", sampleScript, "-", "--exclude-styles", "OP", "--summary", "--diff")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "[Script Info]\n"))
	assert.NotContains(t, stdout, "kept 4 of 5 events")
	assert.NotContains(t, stdout, "@@")
	assert.Contains(t, stderr, "kept 4 of 5 events, removed 1")
	assert.Contains(t, stderr, "-Dialogue: 5")
}
