package domain

// SessionState is the mutable selection and run state of one GUI session.
type SessionState struct {
	Files      []string `json:"files"`
	Preset     string   `json:"preset"`
	Jobs       int      `json:"jobs"`
	Running    bool     `json:"running"`
	LastOutput string   `json:"lastOutput"`
	// Version increases on every mutation so consumers can drop stale snapshots.
	Version int64 `json:"version"`
}

// NewSessionState returns the state a fresh session starts with.
func NewSessionState() SessionState {
	return SessionState{
		Preset: DefaultPresetID,
		Jobs:   1,
	}
}

// FileEntry is one selected input file as shown in the files panel.
type FileEntry struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// SessionView is the render-ready projection of SessionState.
type SessionView struct {
	Files              []FileEntry    `json:"files"`
	FilesPlaceholder   string         `json:"filesPlaceholder,omitempty"`
	PresetOptions      []PresetOption `json:"presetOptions"`
	Preset             string         `json:"preset"`
	PresetDescription  string         `json:"presetDescription,omitempty"`
	Jobs               int            `json:"jobs"`
	Running            bool           `json:"running"`
	CanLaunch          bool           `json:"canLaunch"`
	LaunchLabel        string         `json:"launchLabel"`
	Console            string         `json:"console,omitempty"`
	ConsolePlaceholder string         `json:"consolePlaceholder,omitempty"`
	Version            int64          `json:"version"`
}
