package presets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
)

// ErrUnknownPreset is returned when deleting a preset that is not in the file.
var ErrUnknownPreset = errors.New("unknown preset")

// Save writes or overwrites the preset named name in the file at path.
// The file and its directory are created when missing; an existing entry keeps its position.
func Save(path, name string, p Preset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	unlock, err := lockConfig(path)
	if err != nil {
		return err
	}
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading config: %w", err)
	}
	f := formatFor(path)
	list, err := decode(f, data)
	if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	p.Name = name
	replaced := false
	for i := range list {
		if list[i].Name == name {
			list[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, p)
	}

	return writeList(path, f, list)
}

// Delete removes the named preset from the file at path.
func Delete(path, name string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	unlock, err := lockConfig(path)
	if err != nil {
		return err
	}
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	f := formatFor(path)
	list, err := decode(f, data)
	if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	kept := list[:0]
	for _, p := range list {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(list) {
		return fmt.Errorf("%w %q", ErrUnknownPreset, name)
	}

	return writeList(path, f, kept)
}

func writeList(path string, f format, list []Preset) error {
	out, err := encode(f, list)
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}
	if err := renameio.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// lockConfig takes the cross-process lock guarding read-modify-write cycles on path.
func lockConfig(path string) (func(), error) {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("locking config: %w", err)
	}
	return func() { _ = lock.Unlock() }, nil
}

// ErrConfigExists is returned by Seed when the preset file is already present.
var ErrConfigExists = errors.New("preset config already exists")

// Seed writes the built-in presets to path. It refuses to overwrite an existing file.
func Seed(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	unlock, err := lockConfig(path)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading config: %w", err)
	}
	return writeList(path, formatFor(path), Defaults())
}
