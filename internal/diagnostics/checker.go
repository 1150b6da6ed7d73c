package diagnostics

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"video-compressor/internal/domain"
	"video-compressor/internal/presets"
)

// Checker validates external tools and the preset configuration.
type Checker struct {
	lookPath    func(string) (string, error)
	loadCatalog func(string) (*presets.Catalog, error)
	now         func() time.Time
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return NewCheckerForTests(exec.LookPath, presets.LoadCatalog)
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	loadCatalog func(string) (*presets.Catalog, error),
) *Checker {
	return &Checker{
		lookPath:    lookPath,
		loadCatalog: loadCatalog,
		now:         time.Now,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkTool(settings.ExecutablePath, "Install video-compress and make sure it is on PATH, or set its full path in settings."),
		c.checkTool("ffmpeg", "Install ffmpeg; the compression tool calls it for every file."),
		c.checkPresetConfig(settings.PresetConfigPath),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: c.now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkTool verifies a CLI executable resolves, either as a path or on PATH.
func (c *Checker) checkTool(name, hint string) domain.DiagnosticItem {
	name = strings.TrimSpace(name)
	id := domain.DiagnosticToolPrefix + filepath.Base(name)
	if name == "" {
		return domain.DiagnosticItem{
			ID:      domain.DiagnosticToolPrefix + "unset",
			Name:    "Compression tool",
			Status:  domain.DiagnosticStatusFail,
			Message: "Executable path is empty.",
			Hint:    hint,
		}
	}

	path, err := c.lookPath(name)
	if err != nil {
		return domain.DiagnosticItem{
			ID:      id,
			Name:    name,
			Status:  domain.DiagnosticStatusFail,
			Message: fmt.Sprintf("Tool not found: %s", name),
			Hint:    hint,
		}
	}

	return domain.DiagnosticItem{
		ID:      id,
		Name:    name,
		Status:  domain.DiagnosticStatusPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

// checkPresetConfig verifies the preset file parses and holds at least one preset.
func (c *Checker) checkPresetConfig(path string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   domain.DiagnosticPresetConfig,
		Name: "Preset configuration",
	}

	catalog, err := c.loadCatalog(path)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = err.Error()
		if errors.Is(err, os.ErrNotExist) {
			item.Hint = "Create the file with the built-in presets, or point settings at an existing one."
			item.Fixable = true
		} else {
			item.Hint = "Fix the YAML/TOML syntax of the preset file."
		}
		return item
	}

	if catalog.Len() == 0 {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("No presets defined in %s", path)
		item.Hint = fmt.Sprintf("Add at least one preset, e.g. with `video-compress --presets %s presets add default`.", path)
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("%d presets loaded from %s", catalog.Len(), path)
	return item
}
