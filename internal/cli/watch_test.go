package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWatch_RequiresSelection(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.ass")

	_, _, err := executeCommand("-q", "watch", sampleScript, out)
	requireExitCode(t, err, 2)
	assert.ErrorIs(t, err, errWatchNeedsSelection)
	assert.NoFileExists(t, out)
}

func TestWatch_ArgCount(t *testing.T) {
	_, _, err := executeCommand("watch", sampleScript)
	requireExitCode(t, err, 2)
}

func TestWatch_MissingInput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.ass")

	_, _, err := executeCommand("-q", "watch", "/nonexistent/in.ass", out, "--exclude-layers", "0")
	requireExitCode(t, err, 1)
}

func TestWatch_Help(t *testing.T) {
	stdout, _, err := executeCommand("watch", "--help")
	assert.NoError(t, err)
	assert.Contains(t, stdout, "--debounce")
	assert.Contains(t, stdout, "--exclude-layers")
}
