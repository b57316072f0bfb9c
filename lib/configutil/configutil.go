// Package configutil loads json5 configuration files with optional
// `<name>.local.<ext>` overlay files for machine-specific overrides.
package configutil

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// localPath derives the overlay filename next to the base file,
// e.g. config.json5 -> config.local.json5.
func localPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

// readLayer parses one candidate file into out. A missing or empty file is
// not an error, it just reports found=false.
func readLayer[T any](path string, out *T) (found bool, err error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	if err := json5.Unmarshal(contents, out); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads the configuration file at `path`, then merges the
// `.local` overlay on top of it if one exists. Fields set in the overlay
// win. When neither file exists it returns os.ErrNotExist so the caller
// can decide whether running without a config file is acceptable.
func ReadConfig[T any](path string) (T, error) {
	var out T
	found, err := readLayer(path, &out)
	if err != nil {
		return out, err
	}

	var overlay T
	foundLocal, err := readLayer(localPath(path), &overlay)
	if err != nil {
		return out, err
	}
	if foundLocal {
		if err := mergo.Merge(&out, overlay, mergo.WithOverride); err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localPath(path))
	}

	if !found && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively looks for `name` in the working directory, then in each
// parent directory up to the filesystem root, and reads the first match
// with ReadConfig.
func ReadRecursively[T any](name string) (T, error) {
	var zero T
	dir, err := os.Getwd()
	if err != nil {
		return zero, err
	}
	for {
		config, err := ReadConfig[T](filepath.Join(dir, name))
		if !errors.Is(err, os.ErrNotExist) {
			return config, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return zero, os.ErrNotExist
		}
		dir = parent
	}
}

// ApplyDefaults fills the zero-valued fields of `config` from `defaults`,
// leaving anything the configuration files set untouched.
func ApplyDefaults[T any](config *T, defaults T) error {
	return mergo.Merge(config, defaults)
}
