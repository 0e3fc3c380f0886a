package params

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// DefaultRoot is where the device manager reads its parameters from.
	DefaultRoot = "/data/params/d"

	// JoystickDebugMode switches the device manager into joystick control.
	JoystickDebugMode = "JoystickDebugMode"

	// DebugModeEnabled is the literal the manager expects in the flag file.
	DebugModeEnabled = "1"
)

var (
	ErrEmptyKey   = errors.New("params: empty key")
	ErrKeyEscapes = errors.New("params: key escapes root")
)

// Store is a filesystem-backed parameter store scoped to a root directory.
// Values are raw bytes, keys are relative paths under the root.
type Store struct {
	root string
}

// NewStore constructs a store rooted at root, falling back to DefaultRoot
// when root is blank.
func NewStore(root string) Store {
	resolved := strings.TrimSpace(root)
	if resolved == "" {
		resolved = DefaultRoot
	}
	return Store{root: resolved}
}

// Root reports the directory the store is scoped to.
func (s Store) Root() string {
	return s.root
}

// Put writes value under key. The write is atomic: content lands in a temp
// file in the root and is renamed into place, so a reader never observes a
// partial value.
func (s Store) Put(key string, value []byte) error {
	p, err := s.resolveKey(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("params: prepare %s: %w", key, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".param-*")
	if err != nil {
		return fmt.Errorf("params: stage %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("params: stage %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("params: stage %s: %w", key, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("params: stage %s: %w", key, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("params: commit %s: %w", key, err)
	}
	return nil
}

// Get reads the value stored under key.
func (s Store) Get(key string) ([]byte, error) {
	p, err := s.resolveKey(key)
	if err != nil {
		return nil, err
	}
	out, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("params: read %s: %w", key, err)
	}
	return out, nil
}

// Delete removes key. A missing key is not an error.
func (s Store) Delete(key string) error {
	p, err := s.resolveKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("params: delete %s: %w", key, err)
	}
	return nil
}

// List returns the sorted keys under the root, optionally filtered by
// prefix. A missing root yields an empty list.
func (s Store) List(prefix string) ([]string, error) {
	root, err := filepath.Abs(s.root)
	if err != nil {
		return nil, fmt.Errorf("params: resolve root: %w", err)
	}
	prefix = strings.TrimSpace(prefix)
	keys := make([]string, 0)
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if prefix == "" || strings.HasPrefix(rel, prefix) {
			keys = append(keys, rel)
		}
		return nil
	})
	sort.Strings(keys)
	return keys, nil
}

func (s Store) resolveKey(key string) (string, error) {
	rel := strings.TrimSpace(key)
	if rel == "" {
		return "", ErrEmptyKey
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", ErrKeyEscapes, key)
	}
	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("params: resolve root: %w", err)
	}
	p := filepath.Clean(filepath.Join(root, rel))
	if !isWithin(p, root) {
		return "", fmt.Errorf("%w: %s", ErrKeyEscapes, key)
	}
	return p, nil
}

func isWithin(path string, root string) bool {
	p := filepath.Clean(path)
	r := filepath.Clean(root)
	if p == r {
		return true
	}
	return strings.HasPrefix(p, r+string(os.PathSeparator))
}
