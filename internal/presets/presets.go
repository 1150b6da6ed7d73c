// Package presets loads, edits, and exposes the compression preset catalog.
//
// Presets live in a single configuration file. YAML files hold a "presets"
// mapping keyed by identifier; TOML files hold a [[presets]] array of tables
// with a name field. Both keep the order in which presets appear in the file.
package presets

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"video-compressor/internal/domain"
)

// FileEnv names the environment variable pointing the CLI at an explicit
// preset file. The GUI sets it when spawning the tool.
const FileEnv = "VIDEO_COMPRESS_PRESETS"

// Preset holds the ffmpeg settings and display metadata for one named preset.
// Name comes from the YAML mapping key or the TOML name field.
type Preset struct {
	Name        string `yaml:"-"                     toml:"name"`
	Label       string `yaml:"label,omitempty"       toml:"label,omitempty"`
	Description string `yaml:"description,omitempty" toml:"description,omitempty"`
	VideoCodec  string `yaml:"video_codec"           toml:"video_codec"`
	CRF         int    `yaml:"crf"                   toml:"crf"`
	Preset      string `yaml:"preset"                toml:"preset"`
}

// Option converts a preset into the selector entry shown by the GUI.
func (p Preset) Option() domain.PresetOption {
	label := strings.TrimSpace(p.Label)
	if label == "" {
		label = Label(p.Name)
	}
	return domain.PresetOption{
		Value:       p.Name,
		Label:       label,
		Description: strings.TrimSpace(p.Description),
	}
}

// ConfigLoadError reports a preset configuration that could not be read or parsed.
type ConfigLoadError struct {
	Path    string
	Message string
	Err     error
}

// Error formats the diagnostic shown to the user.
func (e *ConfigLoadError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *ConfigLoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Catalog is the immutable, ordered set of presets loaded for one session.
type Catalog struct {
	presets []Preset
	index   map[string]int
}

// NewCatalog builds a catalog preserving input order. When names repeat, the
// first occurrence wins.
func NewCatalog(list []Preset) *Catalog {
	c := &Catalog{
		presets: make([]Preset, 0, len(list)),
		index:   make(map[string]int, len(list)),
	}
	for _, p := range list {
		if _, dup := c.index[p.Name]; dup {
			continue
		}
		c.index[p.Name] = len(c.presets)
		c.presets = append(c.presets, p)
	}
	return c
}

// Len returns the number of presets. A nil catalog is empty.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.presets)
}

// Options returns selector entries in source order.
func (c *Catalog) Options() []domain.PresetOption {
	if c == nil {
		return []domain.PresetOption{}
	}
	out := make([]domain.PresetOption, len(c.presets))
	for i, p := range c.presets {
		out[i] = p.Option()
	}
	return out
}

// Lookup returns the selector entry for id.
func (c *Catalog) Lookup(id string) (domain.PresetOption, bool) {
	p, ok := c.Preset(id)
	if !ok {
		return domain.PresetOption{}, false
	}
	return p.Option(), true
}

// Preset returns the full preset definition for id.
func (c *Catalog) Preset(id string) (Preset, bool) {
	if c == nil {
		return Preset{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Preset{}, false
	}
	return c.presets[i], true
}

// Names returns identifiers in source order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.presets))
	for i, p := range c.presets {
		names[i] = p.Name
	}
	return names
}

// Label turns a kebab-case identifier into a display name ("high-quality" -> "High Quality").
func Label(id string) string {
	caser := cases.Title(language.Und, cases.NoLower)
	parts := strings.Split(id, "-")
	for i, part := range parts {
		parts[i] = caser.String(part)
	}
	return strings.Join(parts, " ")
}

// BuildFFArgs turns a preset into ffmpeg codec arguments (minus input/output).
func BuildFFArgs(p Preset) []string {
	return []string{
		"-c:v", p.VideoCodec,
		"-preset", p.Preset,
		"-crf", strconv.Itoa(p.CRF),
	}
}

// ListNames returns the sorted preset names of all.
func ListNames(all map[string]Preset) []string {
	names := make([]string, 0, len(all))
	for n := range all {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
