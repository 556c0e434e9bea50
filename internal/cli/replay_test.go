package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basicScript = `steps:
  - op: flush
  - op: insert
    offset: 11
    text: "!"
  - op: insert
    offset: 12
    text: "!"
  - op: replace
    offset: 6
    length: 5
    text: gopher
  - op: flush
  - op: remove
    offset: 0
    length: 6
`

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestReplayGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	t.Run("basic", func(t *testing.T) {
		path := writeTemp(t, "hello.txt", "hello world")
		script := writeTemp(t, "edits.yaml", basicScript)

		out, err := runCommand(t, "replay", path, script)
		require.NoError(t, err)
		g.Assert(t, "replay_basic", []byte(out))

		// The file on disk is untouched.
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(data))
	})

	t.Run("no autosave", func(t *testing.T) {
		path := writeTemp(t, "notes.md", "notes")
		config := writeTemp(t, "mend.toml", "partitioning = \"notes\"\nautosave = false\n")
		script := writeTemp(t, "edits.yaml", `steps:
  - op: insert
    offset: 0
    text: "# "
  - op: flush
  - op: enable-autosave
  - op: insert
    offset: 7
    text: "\n"
`)

		out, err := runCommand(t, "--config", config, "replay", path, script)
		require.NoError(t, err)
		g.Assert(t, "replay_no_autosave", []byte(out))
	})
}

func TestReplayMissingArgs(t *testing.T) {
	_, err := runCommand(t, "replay", "only-one.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestReplayMissingFile(t *testing.T) {
	script := writeTemp(t, "edits.yaml", basicScript)

	_, err := runCommand(t, "replay", "/nonexistent/file.txt", script)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReplayInvalidScript(t *testing.T) {
	path := writeTemp(t, "hello.txt", "hello")
	script := writeTemp(t, "edits.yaml", "steps:\n  - op: explode\n")

	_, err := runCommand(t, "replay", path, script)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid script")
}

func TestReplayOutOfRangeStep(t *testing.T) {
	path := writeTemp(t, "hello.txt", "hello")
	script := writeTemp(t, "edits.yaml", "steps:\n  - op: remove\n    offset: 3\n    length: 10\n")

	out, err := runCommand(t, "replay", path, script)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "step 1 failed")
	assert.Contains(t, out, "  close")
}

func TestReplayInvalidConfig(t *testing.T) {
	path := writeTemp(t, "hello.txt", "hello")
	script := writeTemp(t, "edits.yaml", basicScript)
	config := writeTemp(t, "mend.yaml", "partitioning: \"\"\n")

	_, err := runCommand(t, "--config", config, "replay", path, script)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}
