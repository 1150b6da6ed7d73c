package domain

// DefaultPresetID is selected before the user picks anything.
const DefaultPresetID = "default"

// PresetOption describes one selectable compression preset.
type PresetOption struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}
