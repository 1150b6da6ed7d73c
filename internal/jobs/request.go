package jobs

import (
	"errors"
	"strconv"

	"video-compressor/internal/domain"
)

// CompressCommand is the only subcommand the GUI ever sends to the tool.
const CompressCommand = "compress"

// ErrNoFiles is returned when a launch is attempted without selected files.
var ErrNoFiles = errors.New("no files selected")

// JobRequest is one batch compression invocation derived from session state.
type JobRequest struct {
	Preset string
	Jobs   int
	Files  []string
}

// NewJobRequest snapshots state into a request. It refuses an empty file list.
func NewJobRequest(state domain.SessionState) (JobRequest, error) {
	if len(state.Files) == 0 {
		return JobRequest{}, ErrNoFiles
	}
	return JobRequest{
		Preset: state.Preset,
		Jobs:   state.Jobs,
		Files:  append([]string(nil), state.Files...),
	}, nil
}

// Args renders the tool argument list:
// compress --jobs <n> --preset <id> <file>...
func (r JobRequest) Args() []string {
	args := make([]string, 0, 5+len(r.Files))
	args = append(args,
		CompressCommand,
		"--jobs", strconv.Itoa(r.Jobs),
		"--preset", r.Preset,
	)
	return append(args, r.Files...)
}
