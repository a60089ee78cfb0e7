package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// Manager wraps the Afero Fs interface
type Manager struct {
	Fs afero.Fs
}

// NewMemoryManager creates a manager backed by an in-memory file system
func NewMemoryManager() *Manager {
	return &Manager{
		Fs: afero.NewMemMapFs(),
	}
}

// NewOsManager creates a manager backed by the OS file system
func NewOsManager() *Manager {
	return &Manager{
		Fs: afero.NewOsFs(),
	}
}

// Exists reports whether the given path exists
func (m *Manager) Exists(path string) bool {
	exists, err := afero.Exists(m.Fs, path)
	return err == nil && exists
}

// IsDir checks if a path is a directory
func (m *Manager) IsDir(path string) bool {
	info, err := m.Fs.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// RemoveAll removes a path and any children it contains
func (m *Manager) RemoveAll(path string) error {
	return m.Fs.RemoveAll(path)
}

// Remove removes a single file
func (m *Manager) Remove(path string) error {
	return m.Fs.Remove(path)
}

// WriteFile creates a new file with the given content or overwrites an
// existing file, creating parent directories as needed
func (m *Manager) WriteFile(path string, content string) error {
	dir := filepath.Dir(path)
	if err := m.Fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory %s: %w", dir, err)
	}
	if err := afero.WriteFile(m.Fs, path, []byte(content), 0644); err != nil {
		return fmt.Errorf("error writing file %s: %w", path, err)
	}
	return nil
}

// ReadFile reads the content of a file
func (m *Manager) ReadFile(path string) (string, error) {
	content, err := afero.ReadFile(m.Fs, path)
	if err != nil {
		return "", fmt.Errorf("error reading file %s: %w", path, err)
	}
	return string(content), nil
}

// ReadFileOrEmpty reads the content of a file, returning the empty string
// if the file does not exist or cannot be read
func (m *Manager) ReadFileOrEmpty(path string) string {
	content, err := afero.ReadFile(m.Fs, path)
	if err != nil {
		return ""
	}
	return string(content)
}

// CopyDir recursively copies the directory tree rooted at src to dst
func (m *Manager) CopyDir(src, dst string) error {
	return afero.Walk(m.Fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return m.Fs.MkdirAll(target, 0755)
		}

		content, err := afero.ReadFile(m.Fs, path)
		if err != nil {
			return fmt.Errorf("error reading file %s: %w", path, err)
		}
		if err := m.Fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("error creating directory %s: %w", filepath.Dir(target), err)
		}
		if err := afero.WriteFile(m.Fs, target, content, info.Mode()); err != nil {
			return fmt.Errorf("error writing file %s: %w", target, err)
		}
		return nil
	})
}

// ReplaceInFile replaces all occurrences of old with new inside the file at path
func (m *Manager) ReplaceInFile(path, old, new string) error {
	content, err := m.ReadFile(path)
	if err != nil {
		return err
	}
	return m.WriteFile(path, strings.ReplaceAll(content, old, new))
}

// ReplacePattern rewrites every match of re inside the file at path with repl.
// It returns an error if the pattern does not match.
func (m *Manager) ReplacePattern(path string, re *regexp.Regexp, repl string) error {
	content, err := m.ReadFile(path)
	if err != nil {
		return err
	}
	if !re.MatchString(content) {
		return fmt.Errorf("pattern %q not found in %s", re.String(), path)
	}
	return m.WriteFile(path, re.ReplaceAllString(content, repl))
}

// ListFiles lists all files under root and returns a map representing the
// directory structure. Directories map to nested maps, files to nil.
func (m *Manager) ListFiles(root string) (map[string]interface{}, error) {
	structure := make(map[string]interface{})

	err := afero.Walk(m.Fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		parts := strings.Split(filepath.ToSlash(rel), "/")
		current := structure
		for i, part := range parts {
			if i == len(parts)-1 {
				if info.IsDir() {
					current[part] = make(map[string]interface{})
				} else {
					current[part] = nil // Use nil to represent files
				}
			} else {
				if _, exists := current[part]; !exists {
					current[part] = make(map[string]interface{})
				}
				current = current[part].(map[string]interface{})
			}
		}
		return nil
	})

	return structure, err
}
