package integration

import (
	"os"
	"path/filepath"
	"testing"
)

// copyFixtureToTemp copies a fixture template directory into tempDir and
// returns the absolute path of the copy.
func copyFixtureToTemp(t *testing.T, fixtureName, tempDir string) string {
	t.Helper()

	fixtureDir, err := filepath.Abs(filepath.Join("../fixtures/templates", fixtureName))
	if err != nil {
		t.Fatalf("failed to get fixture path: %v", err)
	}

	destDir := filepath.Join(tempDir, fixtureName)
	if err := os.CopyFS(destDir, os.DirFS(fixtureDir)); err != nil {
		t.Fatalf("failed to copy fixture: %v", err)
	}
	return destDir
}

// readOutput reads a rendered file relative to dir.
func readOutput(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, rel))
	if err != nil {
		t.Fatalf("failed to read %s: %v", rel, err)
	}
	return string(data)
}
