package presets

import (
	"errors"
	"fmt"
	"os"
)

// LoadCatalog reads the preset file at path and returns its catalog.
// Any failure is reported as *ConfigLoadError. An empty file yields an empty catalog.
func LoadCatalog(path string) (*Catalog, error) {
	list, err := readList(path)
	if err != nil {
		return nil, err
	}
	return NewCatalog(list), nil
}

// LoadAll reads the preset file at path into a map keyed by preset name.
func LoadAll(path string) (map[string]Preset, error) {
	list, err := readList(path)
	if err != nil {
		return nil, err
	}
	all := make(map[string]Preset, len(list))
	for _, p := range list {
		if _, dup := all[p.Name]; !dup {
			all[p.Name] = p
		}
	}
	return all, nil
}

func readList(path string) ([]Preset, error) {
	if path == "" {
		return nil, &ConfigLoadError{Message: "preset config path is not set"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		msg := "failed to read config file"
		if errors.Is(err, os.ErrNotExist) {
			msg = fmt.Sprintf("config file not found: %s", path)
		}
		return nil, &ConfigLoadError{Path: path, Message: msg, Err: err}
	}

	list, err := decode(formatFor(path), data)
	if err != nil {
		return nil, &ConfigLoadError{
			Path:    path,
			Message: fmt.Sprintf("failed to parse %s", path),
			Err:     err,
		}
	}
	return list, nil
}
