package jobs

import (
	"strings"

	"video-compressor/internal/domain"
)

const (
	filesPlaceholder   = "No files selected"
	consolePlaceholder = "Output will appear here"
	launchIdleLabel    = "Start Compression"
	launchBusyLabel    = "Compressing..."
)

// Project renders session state and preset options into the panel view model.
// It has no side effects.
func Project(state domain.SessionState, options []domain.PresetOption) domain.SessionView {
	view := domain.SessionView{
		Files:         make([]domain.FileEntry, 0, len(state.Files)),
		PresetOptions: append([]domain.PresetOption{}, options...),
		Preset:        state.Preset,
		Jobs:          state.Jobs,
		Running:       state.Running,
		CanLaunch:     len(state.Files) > 0 && !state.Running,
		LaunchLabel:   launchIdleLabel,
		Console:       state.LastOutput,
		Version:       state.Version,
	}

	for _, path := range state.Files {
		view.Files = append(view.Files, domain.FileEntry{Path: path, Name: displayName(path)})
	}
	if len(view.Files) == 0 {
		view.FilesPlaceholder = filesPlaceholder
	}
	for _, opt := range options {
		if opt.Value == state.Preset {
			view.PresetDescription = opt.Description
			break
		}
	}
	if state.Running {
		view.LaunchLabel = launchBusyLabel
	}
	if view.Console == "" {
		view.ConsolePlaceholder = consolePlaceholder
	}
	return view
}

// displayName strips directories using either separator, since paths may come
// from a Windows picker.
func displayName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
