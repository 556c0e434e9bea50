package integration

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTemp creates a file holding contents in a fresh directory.
func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	return string(data)
}

// writeExternal replaces path the way another process would.
func writeExternal(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o600)
}
