package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tacogips/dcg/internal/debug"
)

// maxArtifactAttempts bounds the counter search of WriteArtifact.
const maxArtifactAttempts = 1000

// Writer writes generated sources and rendered outputs.
type Writer interface {
	// WriteFile replaces path with content, creating parent directories.
	// Readers never observe a partially written file.
	WriteFile(path string, content []byte) error

	// WriteArtifact stores generated source under a fresh
	// "<n>.<name>.generated.go" file in dir and returns its path.
	WriteArtifact(dir, name string, source []byte) (string, error)

	// CreateDir creates a directory and any necessary parent directories.
	CreateDir(path string) error
}

// FileWriter implements Writer on the local filesystem.
type FileWriter struct{}

// NewFileWriter creates a new FileWriter.
func NewFileWriter() Writer {
	return &FileWriter{}
}

// WriteFile writes content to a temporary file next to path and renames it
// into place. Files are created with 0644 permissions.
func (w *FileWriter) WriteFile(path string, content []byte) error {
	debug.Debug("[generator] Writing file: %s (size: %d bytes)", path, len(content))

	dir := filepath.Dir(path)
	if err := w.CreateDir(dir); err != nil {
		return newGeneratorError(GeneratorWriteFailed, "failed to create parent directory", path, err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return newGeneratorError(GeneratorWriteFailed, "failed to create temporary file", path, err)
	}
	tempFile := f.Name()

	_, err = f.Write(content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tempFile, 0644)
	}
	if err == nil {
		err = os.Rename(tempFile, path)
	}
	if err != nil {
		_ = os.Remove(tempFile)
		return newGeneratorError(GeneratorWriteFailed, "failed to write file", path, err)
	}

	debug.Debug("[generator] File written: %s", path)
	return nil
}

// WriteArtifact stores generated source under the first free
// "<n>.<name>.generated.go" name in dir, starting at 1. A name that is
// already taken is locked and the next counter is tried.
func (w *FileWriter) WriteArtifact(dir, name string, source []byte) (string, error) {
	name = ArtifactBase(name)
	if err := w.CreateDir(dir); err != nil {
		return "", err
	}

	for n := 1; n <= maxArtifactAttempts; n++ {
		path := filepath.Join(dir, ArtifactName(n, name))
		err := ClaimArtifact(path, source)
		if IsArtifactLocked(err) {
			continue
		}
		if err != nil {
			return "", err
		}
		return path, nil
	}

	return "", newGeneratorError(GeneratorArtifactLocked,
		fmt.Sprintf("no free artifact name after %d attempts", maxArtifactAttempts),
		filepath.Join(dir, ArtifactName(1, name)),
		nil)
}

// ClaimArtifact creates path exclusively and writes source to it. An
// existing file yields a GeneratorArtifactLocked error.
func ClaimArtifact(path string, source []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		debug.Debug("[generator] Artifact locked: %s", path)
		return newGeneratorError(GeneratorArtifactLocked, "artifact already exists", path, err)
	}
	if err != nil {
		return newGeneratorError(GeneratorWriteFailed, "failed to create artifact", path, err)
	}

	_, err = f.Write(source)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return newGeneratorError(GeneratorWriteFailed, "failed to write artifact", path, err)
	}
	debug.Debug("[generator] Artifact written: %s", path)
	return nil
}

// IsArtifactLocked reports whether err is a GeneratorArtifactLocked error.
func IsArtifactLocked(err error) bool {
	var genErr *GeneratorError
	return errors.As(err, &genErr) && genErr.Type == GeneratorArtifactLocked
}

// CreateDir creates a directory and any necessary parent directories.
// Uses 0755 permissions for created directories.
func (w *FileWriter) CreateDir(path string) error {
	debug.Debug("[generator] Creating directory: %s", path)
	if err := os.MkdirAll(path, 0755); err != nil {
		return newGeneratorError(GeneratorWriteFailed,
			"failed to create directory",
			path,
			err)
	}
	return nil
}

// ArtifactName returns the file name of the n-th artifact of a template.
func ArtifactName(n int, base string) string {
	return fmt.Sprintf("%d.%s.generated.go", n, base)
}

// ArtifactBase reduces a template path to the base used in artifact names:
// the file name without directory and extension.
func ArtifactBase(templatePath string) string {
	base := filepath.Base(templatePath)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "template"
	}
	return base
}

// CopyDir copies the Go sources below src into dst, keeping the directory
// layout. Tests and non-Go files are skipped.
func CopyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		return os.WriteFile(target, data, 0644)
	})
}
