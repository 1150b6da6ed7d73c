package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"video-compressor/internal/domain"
)

// Executor runs the compression tool with an argument list and returns its output.
type Executor interface {
	Run(ctx context.Context, args []string) (string, error)
}

// Outcome tags how a launch ended.
type Outcome string

const (
	OutcomeRejected  Outcome = "rejected"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Result is the settled value of a Launch.
type Result struct {
	JobID   string
	Outcome Outcome
	Args    []string
	Output  string
	Err     error
}

// Launch is a handle to one launch attempt. Rejected launches are settled on return.
type Launch struct {
	done   chan struct{}
	result Result
}

// Done is closed once the launch has settled.
func (l *Launch) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until the launch settles and returns its result.
func (l *Launch) Wait() Result {
	<-l.done
	return l.result
}

// Result returns the result without blocking; ok is false while still running.
func (l *Launch) Result() (Result, bool) {
	select {
	case <-l.done:
		return l.result, true
	default:
		return Result{}, false
	}
}

func settled(r Result) *Launch {
	l := &Launch{done: make(chan struct{}), result: r}
	close(l.done)
	return l
}

// Option configures a Controller.
type Option func(*Controller)

// WithEvents publishes job status, result, and error events to bus.
func WithEvents(bus *EventBus) Option {
	return func(c *Controller) { c.events = bus }
}

// WithLogger sets the controller logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithOnChange registers a callback invoked with a state snapshot after every mutation.
// It runs outside the controller lock.
func WithOnChange(fn func(domain.SessionState)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithJobIDs overrides job ID generation.
func WithJobIDs(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

// Controller owns the session state and drives at most one tool invocation at a time.
type Controller struct {
	exec     Executor
	jobs     *Manager
	events   *EventBus
	logger   zerolog.Logger
	onChange func(domain.SessionState)
	newID    func() string

	mu    sync.Mutex
	state domain.SessionState
	wg    sync.WaitGroup
}

// NewController creates a controller with a fresh session.
func NewController(exec Executor, opts ...Option) *Controller {
	c := &Controller{
		exec:   exec,
		jobs:   NewManager(),
		logger: zerolog.Nop(),
		newID:  uuid.NewString,
		state:  domain.NewSessionState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the session state.
func (c *Controller) State() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// View projects the current state with the given preset options.
func (c *Controller) View(options []domain.PresetOption) domain.SessionView {
	return Project(c.State(), options)
}

// CurrentJob returns the most recent job and its status.
func (c *Controller) CurrentJob() domain.Job {
	return c.jobs.Current()
}

// SelectFiles replaces the file list. An empty selection is a cancelled picker and changes nothing.
func (c *Controller) SelectFiles(paths []string) {
	if len(paths) == 0 {
		return
	}
	c.update(func(s *domain.SessionState) {
		s.Files = append([]string(nil), paths...)
	})
}

// SetPreset selects a preset identifier. It is not checked against the catalog.
func (c *Controller) SetPreset(id string) {
	c.update(func(s *domain.SessionState) { s.Preset = id })
}

// SetJobs sets the parallelism value as given.
func (c *Controller) SetJobs(n int) {
	c.update(func(s *domain.SessionState) { s.Jobs = n })
}

// SetConsole replaces the console text, e.g. to report a startup failure.
func (c *Controller) SetConsole(text string) {
	c.update(func(s *domain.SessionState) { s.LastOutput = text })
}

// Launch starts a compression run for the current selection. It is a no-op
// returning a rejected, settled handle when no files are selected or a run is
// already in flight.
func (c *Controller) Launch(ctx context.Context) *Launch {
	c.mu.Lock()
	req, err := NewJobRequest(c.state)
	if err == nil && c.state.Running {
		err = ErrJobAlreadyRunning
	}
	var jobID string
	if err == nil {
		jobID = c.newID()
		err = c.jobs.Start(jobID)
	}
	if err != nil {
		c.mu.Unlock()
		c.logger.Debug().Err(err).Msg("launch rejected")
		return settled(Result{Outcome: OutcomeRejected, Err: err})
	}

	c.state.LastOutput = ""
	c.state.Running = true
	c.state.Version++
	snapshot := c.snapshotLocked()
	args := req.Args()
	c.publish(Event{JobID: jobID, Type: EventTypeStatus, Status: domain.JobStatusRunning, Message: "Compression started", Args: args})
	c.mu.Unlock()

	c.logger.Info().Str("job_id", jobID).Strs("args", args).Msg("launching compression")
	c.notify(snapshot)

	l := &Launch{done: make(chan struct{})}
	c.wg.Add(1)
	go c.run(ctx, jobID, args, l)
	return l
}

// Wait blocks until any in-flight launch has settled.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) run(ctx context.Context, jobID string, args []string, l *Launch) {
	defer c.wg.Done()

	output, err := c.invoke(ctx, args)

	res := Result{JobID: jobID, Args: args}
	status := domain.JobStatusSucceeded
	c.mu.Lock()
	if err != nil {
		status = domain.JobStatusFailed
		res.Outcome = OutcomeFailed
		res.Err = err
		c.state.LastOutput = "Error: " + err.Error()
	} else {
		res.Outcome = OutcomeSucceeded
		res.Output = output
		c.state.LastOutput = output
	}
	c.state.Running = false
	c.state.Version++
	if tErr := c.jobs.Transition(status); tErr != nil {
		c.logger.Warn().Err(tErr).Str("job_id", jobID).Msg("job transition")
	}
	// Terminal events go out before the lock is released so the next job's
	// events cannot land between them.
	if err != nil {
		c.publish(Event{JobID: jobID, Type: EventTypeError, Status: status, Message: err.Error()})
	} else {
		c.publish(Event{JobID: jobID, Type: EventTypeResult, Status: status, Message: "Compression finished", Output: output})
	}
	c.publish(Event{JobID: jobID, Type: EventTypeStatus, Status: status})
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	if err != nil {
		c.logger.Error().Err(err).Str("job_id", jobID).Msg("compression failed")
	} else {
		c.logger.Info().Str("job_id", jobID).Msg("compression finished")
	}
	c.notify(snapshot)

	l.result = res
	close(l.done)
}

// invoke calls the executor, turning a panic into an ordinary failure so the
// running flag is always cleared.
func (c *Controller) invoke(ctx context.Context, args []string) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("executor panic: %v", r)
		}
	}()
	return c.exec.Run(ctx, args)
}

func (c *Controller) update(mutate func(*domain.SessionState)) {
	c.mu.Lock()
	mutate(&c.state)
	c.state.Version++
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)
}

func (c *Controller) snapshotLocked() domain.SessionState {
	s := c.state
	s.Files = append([]string(nil), c.state.Files...)
	return s
}

func (c *Controller) notify(s domain.SessionState) {
	if c.onChange != nil {
		c.onChange(s)
	}
}

func (c *Controller) publish(e Event) {
	if c.events != nil {
		c.events.Publish(e)
	}
}
