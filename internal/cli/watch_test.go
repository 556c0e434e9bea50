package cli

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchMissingFile(t *testing.T) {
	_, err := runCommand(t, "watch", "/nonexistent/file.txt")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestWatchReconcilesAndSaves(t *testing.T) {
	path := writeTemp(t, "notes.txt", "hello")
	config := writeTemp(t, "mend.json", `{"partitioning": "notes", "debounce": "10ms"}`)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", config, "watch", path})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	// Give watcher time to start, then change the file from outside.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("hello again"), 0o600))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after context cancel")
	}

	out := buf.String()
	assert.Contains(t, out, "watching "+path+" (5 bytes, debounce 10ms)")
	assert.Contains(t, out, "  reconcile [0,5] __dftl_partition_content_type")
	assert.Contains(t, out, "reloaded "+path)
	assert.Contains(t, out, "  close")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello again", string(data))
}
