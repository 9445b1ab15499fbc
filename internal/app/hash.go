package app

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// HashableFile represents a file with path and content for hash calculation.
type HashableFile struct {
	// Path is the path of the file.
	Path string
	// Content is the file content.
	Content []byte
}

// HashFiles calculates SHA256 hash from file path/content pairs.
// The input files must already be sorted by path for deterministic results.
// Uses null byte separators between path and content, and between files,
// to prevent hash collisions from different file combinations.
func HashFiles(files []HashableFile) string {
	if len(files) == 0 {
		return ""
	}

	h := sha256.New()

	for _, file := range files {
		h.Write([]byte(file.Path))
		h.Write([]byte("\x00")) // Separator between path and content
		h.Write(file.Content)
		h.Write([]byte("\x00")) // Separator between files
	}

	return hex.EncodeToString(h.Sum(nil))
}

// UnitKey identifies a compiled unit: the generated source, the debug flag
// and the Go sources of every referenced package. Editing a referenced
// package therefore yields a new key.
func UnitKey(source string, references []string, debugMode bool) (string, error) {
	files := []HashableFile{
		{Path: "\x00source", Content: []byte(source)},
		{Path: "\x00debug", Content: []byte(strconv.FormatBool(debugMode))},
	}

	for i, ref := range references {
		refFiles, err := referenceFiles(ref)
		if err != nil {
			return "", err
		}
		prefix := fmt.Sprintf("\x00ref%d:%s", i, ref)
		files = append(files, HashableFile{Path: prefix})
		files = append(files, refFiles...)
	}

	return HashFiles(files), nil
}

// referenceFiles collects the Go sources below dir sorted by path.
func referenceFiles(dir string) ([]HashableFile, error) {
	var files []HashableFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, HashableFile{Path: path, Content: content})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to hash reference %s: %w", dir, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
