package domain

// JobStatus tracks the lifecycle of one batch compression invocation.
type JobStatus string

const (
	JobStatusIdle      JobStatus = "idle"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Settings contains user-editable application configuration.
type Settings struct {
	PresetConfigPath string `json:"presetConfigPath"`
	ExecutablePath   string `json:"executablePath"`
	LogLevel         string `json:"logLevel"`
}

// Job stores the current job identity and lifecycle status.
type Job struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
}
