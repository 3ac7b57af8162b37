package testing

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FileAssertions checks the state of a written output tree.
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates a new file assertions helper rooted at baseDir.
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

func (fa *FileAssertions) full(relativePath string) string {
	return filepath.Join(fa.baseDir, filepath.FromSlash(relativePath))
}

// AssertFileExists validates that a file exists
func (fa *FileAssertions) AssertFileExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	if _, err := os.Stat(fa.full(relativePath)); os.IsNotExist(err) {
		fa.t.Errorf("Expected file to exist: %s", relativePath)
	}
	return fa
}

// AssertFileNotExists validates that a file does not exist
func (fa *FileAssertions) AssertFileNotExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	if _, err := os.Stat(fa.full(relativePath)); err == nil {
		fa.t.Errorf("Expected file to not exist: %s", relativePath)
	}
	return fa
}

// AssertFileContains validates that a file contains expected content
func (fa *FileAssertions) AssertFileContains(relativePath, expected string) *FileAssertions {
	fa.t.Helper()
	content, ok := fa.read(relativePath)
	if ok && !strings.Contains(content, expected) {
		fa.t.Errorf("Expected file %s to contain %q\nActual content:\n%s", relativePath, expected, content)
	}
	return fa
}

// AssertFileNotContains validates that a file does not contain the given text
func (fa *FileAssertions) AssertFileNotContains(relativePath, unexpected string) *FileAssertions {
	fa.t.Helper()
	content, ok := fa.read(relativePath)
	if ok && strings.Contains(content, unexpected) {
		fa.t.Errorf("Expected file %s not to contain %q\nActual content:\n%s", relativePath, unexpected, content)
	}
	return fa
}

// AssertDocumentCount validates the number of .adoc files below relativePath.
func (fa *FileAssertions) AssertDocumentCount(relativePath string, want int) *FileAssertions {
	fa.t.Helper()
	if got := fa.CountDocuments(relativePath); got != want {
		fa.t.Errorf("Expected %d documents in %s, found %d", want, relativePath, got)
	}
	return fa
}

// CountDocuments returns the number of .adoc files below relativePath.
func (fa *FileAssertions) CountDocuments(relativePath string) int {
	fa.t.Helper()
	count := 0
	err := filepath.WalkDir(fa.full(relativePath), func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".adoc") {
			count++
		}
		return nil
	})
	if err != nil {
		fa.t.Logf("Failed to walk %s: %v", relativePath, err)
	}
	return count
}

// GetFileContent reads and returns the content of a file
func (fa *FileAssertions) GetFileContent(relativePath string) string {
	fa.t.Helper()
	content, err := os.ReadFile(fa.full(relativePath))
	if err != nil {
		fa.t.Fatalf("Failed to read file %s: %v", relativePath, err)
	}
	return string(content)
}

func (fa *FileAssertions) read(relativePath string) (string, bool) {
	fa.t.Helper()
	content, err := os.ReadFile(fa.full(relativePath))
	if err != nil {
		fa.t.Errorf("Failed to read file %s: %v", relativePath, err)
		return "", false
	}
	return string(content), true
}
