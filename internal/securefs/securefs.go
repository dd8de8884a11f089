// Package securefs provides filesystem operations restricted to a base
// directory, using os.Root for OS-level sandboxing. Clip paths come from the
// database, so every read and write of audio content goes through this
// boundary to stop traversal via "../" or symlinks.
package securefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhour/blazebot/internal/errors"
)

// SecureFS restricts file operations to a base directory.
type SecureFS struct {
	baseDir string   // absolute base directory all operations are restricted to
	root    *os.Root // sandboxed filesystem root
}

// New creates a secure filesystem rooted at baseDir, creating the directory
// if needed.
func New(baseDir string) (*SecureFS, error) {
	absPath, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem sandbox: %w", err)
	}

	return &SecureFS{baseDir: absPath, root: root}, nil
}

// BaseDir returns the absolute base directory.
func (s *SecureFS) BaseDir() string {
	return s.baseDir
}

// Close releases the sandbox root.
func (s *SecureFS) Close() error {
	return s.root.Close()
}

// Relative validates a stored path and returns it relative to the base
// directory. The path may be absolute or base-relative; anything resolving
// outside the base returns ErrPathBlocked.
func (s *SecureFS) Relative(path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.baseDir, abs)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(s.baseDir, abs)
	if err != nil {
		return "", errors.New(errors.ErrPathBlocked).
			Component("securefs").
			Category(errors.CategorySecurity).
			Context("path", path).
			Build()
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.New(errors.ErrPathBlocked).
			Component("securefs").
			Category(errors.CategorySecurity).
			Context("path", path).
			Build()
	}
	return rel, nil
}

// Abs returns the absolute path for a validated relative path.
func (s *SecureFS) Abs(rel string) string {
	return filepath.Join(s.baseDir, rel)
}

// Exists reports whether the relative path exists inside the sandbox.
func (s *SecureFS) Exists(rel string) bool {
	_, err := s.root.Stat(rel)
	return err == nil
}

// ReadFile reads a file inside the sandbox. Symlinks escaping the base fail
// at the OS level thanks to os.Root.
func (s *SecureFS) ReadFile(rel string) ([]byte, error) {
	data, err := s.root.ReadFile(rel)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return data, nil
}

// WriteFile writes a file inside the sandbox, creating parent directories as
// needed.
func (s *SecureFS) WriteFile(rel string, data []byte) error {
	if dir := filepath.Dir(rel); dir != "." {
		if err := s.root.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := s.root.WriteFile(rel, data, 0o640); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}
