package presets

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// format identifies the on-disk encoding of a preset file.
type format int

const (
	formatYAML format = iota
	formatTOML
)

// formatFor picks the encoding from the file extension. Unknown extensions are YAML.
func formatFor(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return formatTOML
	default:
		return formatYAML
	}
}

// tomlDocument is the TOML layout: an ordered [[presets]] array.
type tomlDocument struct {
	Presets []Preset `toml:"presets"`
}

// Marshalers are variables so tests can force serialization failures.
var (
	yamlMarshal = yaml.Marshal
	tomlMarshal = toml.Marshal
)

// decode parses data into presets in document order.
func decode(f format, data []byte) ([]Preset, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	switch f {
	case formatTOML:
		var doc tomlDocument
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		out := make([]Preset, 0, len(doc.Presets))
		for _, p := range doc.Presets {
			p.Name = strings.TrimSpace(p.Name)
			if p.Name == "" {
				return nil, fmt.Errorf("preset #%d has no name", len(out)+1)
			}
			out = append(out, p)
		}
		return out, nil
	default:
		return decodeYAML(data)
	}
}

// decodeYAML walks the node tree so the order of the presets mapping survives.
func decodeYAML(data []byte) ([]Preset, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: top level must be a mapping", doc.Line)
	}

	var list *yaml.Node
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value == "presets" {
			list = doc.Content[i+1]
			break
		}
	}
	if list == nil || list.Tag == "!!null" {
		return nil, nil
	}
	if list.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: presets must be a mapping of name to settings", list.Line)
	}

	out := make([]Preset, 0, len(list.Content)/2)
	for i := 0; i+1 < len(list.Content); i += 2 {
		var p Preset
		if err := list.Content[i+1].Decode(&p); err != nil {
			return nil, fmt.Errorf("preset %q: %w", list.Content[i].Value, err)
		}
		p.Name = list.Content[i].Value
		out = append(out, p)
	}
	return out, nil
}

// encode serializes presets in the given order.
func encode(f format, list []Preset) ([]byte, error) {
	if f == formatTOML {
		return tomlMarshal(tomlDocument{Presets: list})
	}

	entries := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range list {
		var value yaml.Node
		if err := value.Encode(p); err != nil {
			return nil, err
		}
		entries.Content = append(entries.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: p.Name},
			&value,
		)
	}
	root := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "presets"},
			entries,
		},
	}
	return yamlMarshal(root)
}
