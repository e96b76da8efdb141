package theme

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/signature-rain/internal/config"
)

// Discover walks dir for .yaml, .yml and .json theme files. Files that fail to parse or
// validate are logged and skipped. A missing dir yields no themes and no error.
func Discover(ctx context.Context, dir string) ([]Theme, error) {
	root, err := config.ExpandTilde(dir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		found []Theme
	)
	conf := fastwalk.DefaultConfig
	err = fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries.
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !isThemeFile(path) {
			return nil
		}
		t, err := Load(path)
		if err != nil {
			logrus.Warnf("Skipping theme file %s: %v", path, err)
			return nil
		}
		mu.Lock()
		found = append(found, t)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// Load reads and validates a single theme file.
func Load(path string) (Theme, error) {
	var t Theme
	if err := config.UnmarshalFile(path, &t); err != nil {
		return Theme{}, err
	}
	if err := t.Validate(); err != nil {
		return Theme{}, err
	}
	t.Source = path
	return t, nil
}

// All returns the built-ins merged with the themes found in dir.
func All(ctx context.Context, dir string) ([]Theme, error) {
	discovered, err := Discover(ctx, dir)
	if err != nil {
		return nil, err
	}
	return merge(Builtins(), discovered), nil
}

// Lookup finds a theme by name among the built-ins and dir.
func Lookup(ctx context.Context, name, dir string) (Theme, error) {
	themes, err := All(ctx, dir)
	if err != nil {
		return Theme{}, err
	}
	for _, t := range themes {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return Theme{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

func isThemeFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}
