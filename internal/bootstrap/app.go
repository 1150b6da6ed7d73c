package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"video-compressor/internal/config"
	"video-compressor/internal/diagnostics"
	"video-compressor/internal/domain"
	"video-compressor/internal/executor"
	"video-compressor/internal/jobs"
	applog "video-compressor/internal/log"
	"video-compressor/internal/presets"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// SessionChangedEvent is pushed to the frontend with the projected SessionView.
const SessionChangedEvent = "session:changed"

// JobEvent is pushed to the frontend for every published job event.
const JobEvent = "job:event"

var videoDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Video files",
		Pattern:     "*.mp4;*.mov;*.avi;*.mkv",
	},
}

// App wires configuration, presets, the job controller, and UI runtime callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Diagnostics domain.DiagnosticReport
	assets      fs.FS
	checker     *diagnostics.Checker
	catalog     *presets.Catalog
	controller  *jobs.Controller
	events      *jobs.EventBus
	logger      zerolog.Logger

	// jobCtx bounds executor invocations to the app lifetime.
	jobCtx context.Context
	stop   context.CancelFunc

	mu         sync.Mutex
	runtimeCtx context.Context
	lastSeq    int64
	emit       func(ctx context.Context, name string, data ...interface{})

	// pushMu orders session pushes; pushed is the newest version sent.
	pushMu sync.Mutex
	pushed int64
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	appDir := config.AppDir()
	if err := ensureLocalBinOnPATH(appDir); err != nil {
		return nil, fmt.Errorf("prepare local tool path: %w", err)
	}

	store := config.NewJSONStore(filepath.Join(appDir, "settings.json"))
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	applog.Configure(applog.Config{
		Level:    settings.LogLevel,
		FilePath: filepath.Join(appDir, "logs", "app.log"),
	})
	logger := applog.WithComponent("app")

	cli := executor.New(settings.ExecutablePath, settings.PresetConfigPath, applog.WithComponent("executor"))
	logger.Info().Str("executable", cli.Path()).Str("presets", settings.PresetConfigPath).Msg("compression tool configured")

	app := newApp(settings, store, cli, diagnostics.NewChecker(), logger)
	cli.OnCommandLog(app.publishCommandLog)
	app.assets = assets
	return app, nil
}

// newApp assembles an App around an executor. The preset catalog is loaded
// once here and stays fixed for the session.
func newApp(
	settings domain.Settings,
	store config.Store,
	exec jobs.Executor,
	checker *diagnostics.Checker,
	logger zerolog.Logger,
) *App {
	jobCtx, stop := context.WithCancel(context.Background())
	a := &App{
		Settings: settings,
		Store:    store,
		checker:  checker,
		events:   jobs.NewEventBus(1000),
		logger:   logger,
		jobCtx:   jobCtx,
		stop:     stop,
		emit:     wailsruntime.EventsEmit,
	}

	catalog, loadErr := presets.LoadCatalog(settings.PresetConfigPath)
	if loadErr != nil {
		logger.Error().Err(loadErr).Str("path", settings.PresetConfigPath).Msg("load presets")
		catalog = presets.NewCatalog(nil)
	} else {
		logger.Info().Int("count", catalog.Len()).Str("path", settings.PresetConfigPath).Msg("presets loaded")
	}
	a.catalog = catalog

	a.controller = jobs.NewController(exec,
		jobs.WithEvents(a.events),
		jobs.WithLogger(applog.WithComponent("jobs")),
		jobs.WithOnChange(a.pushSession),
	)
	if loadErr != nil {
		a.controller.SetConsole("Error loading presets: " + loadErr.Error())
	}

	if checker != nil {
		a.Diagnostics = checker.Run(settings)
	}
	return a
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Video Compressor",
		Width:       1100,
		Height:      800,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown:  a.Shutdown,
		Bind:        []interface{}{a},
	})
}

// Startup stores Wails runtime context for push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// Shutdown drops the runtime context and cancels any in-flight compression.
func (a *App) Shutdown(context.Context) {
	a.mu.Lock()
	a.runtimeCtx = nil
	a.mu.Unlock()
	a.stop()
}

// GetSession returns the current projected view.
func (a *App) GetSession() domain.SessionView {
	return a.controller.View(a.catalog.Options())
}

// GetPresets returns the ordered preset options loaded at startup.
func (a *App) GetPresets() []domain.PresetOption {
	return a.catalog.Options()
}

// PickFiles opens the native multi-select dialog and replaces the selection.
// Cancelling the dialog leaves the selection as it was.
func (a *App) PickFiles() (domain.SessionView, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return domain.SessionView{}, err
	}

	paths, err := wailsruntime.OpenMultipleFilesDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select videos",
		Filters: videoDialogFilter,
	})
	if err != nil {
		return domain.SessionView{}, err
	}

	return a.SelectFiles(paths), nil
}

// SelectFiles replaces the selection with paths. Empty entries are dropped;
// other paths are kept verbatim.
func (a *App) SelectFiles(paths []string) domain.SessionView {
	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	a.controller.SelectFiles(cleaned)
	return a.GetSession()
}

// SetPreset records the selected preset identifier. Unknown identifiers are
// kept and left for the tool to reject.
func (a *App) SetPreset(id string) domain.SessionView {
	if _, ok := a.catalog.Lookup(id); !ok {
		a.logger.Warn().Str("preset", id).Msg("preset not in catalog")
	}
	a.controller.SetPreset(id)
	return a.GetSession()
}

// SetJobs parses the parallelism field. Non-numeric input is rejected and
// leaves the session unchanged.
func (a *App) SetJobs(raw string) (domain.SessionView, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return a.GetSession(), fmt.Errorf("parallel jobs must be a whole number: %q", raw)
	}
	a.controller.SetJobs(n)
	return a.GetSession(), nil
}

// StartCompression launches a run for the current selection and returns
// immediately. Completion is reported through session:changed.
func (a *App) StartCompression() domain.SessionView {
	a.controller.Launch(a.jobCtx)
	return a.GetSession()
}

// CurrentJob returns current job metadata and status.
func (a *App) CurrentJob() domain.Job {
	return a.controller.CurrentJob()
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then refreshes diagnostics.
// Preset and executable changes apply from the next launch of the app.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := config.Normalize(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.refreshDiagnosticsFromSettings(normalized)
	return normalized, nil
}

// RefreshDiagnostics reloads settings and reruns dependency checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	return a.refreshDiagnosticsFromSettings(settings), nil
}

// Wait blocks until any in-flight compression has finished.
func (a *App) Wait() {
	a.controller.Wait()
}

func (a *App) refreshDiagnosticsFromSettings(settings domain.Settings) domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Settings = settings
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(settings)
	}
	return a.Diagnostics
}

// publishCommandLog records a finished tool invocation as a log event.
func (a *App) publishCommandLog(l executor.CommandLog) {
	output := l.Stdout
	if l.ExitCode != 0 {
		output = l.Stderr
	}
	a.events.Publish(jobs.Event{
		JobID:   a.controller.CurrentJob().ID,
		Type:    jobs.EventTypeLog,
		Message: fmt.Sprintf("%s exited with code %d after %s", l.Command, l.ExitCode, l.Duration.Round(time.Millisecond)),
		Args:    l.Args,
		Output:  output,
	})
}

// pushSession emits the projected view for every controller state change.
// Snapshots older than one already sent are dropped.
func (a *App) pushSession(state domain.SessionState) {
	a.mu.Lock()
	ctx := a.runtimeCtx
	emit := a.emit
	a.mu.Unlock()
	if ctx == nil || emit == nil {
		return
	}

	a.pushMu.Lock()
	defer a.pushMu.Unlock()
	if state.Version <= a.pushed {
		return
	}
	a.pushed = state.Version
	emit(ctx, SessionChangedEvent, jobs.Project(state, a.catalog.Options()))
	a.forwardJobEvents(ctx, emit)
}

// forwardJobEvents pushes bus events not yet delivered to the frontend.
func (a *App) forwardJobEvents(ctx context.Context, emit func(context.Context, string, ...interface{})) {
	a.mu.Lock()
	pending := a.events.Since(a.lastSeq)
	if n := len(pending); n > 0 {
		a.lastSeq = pending[n-1].Seq
	}
	a.mu.Unlock()
	for _, event := range pending {
		emit(ctx, JobEvent, event)
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// localBinDir is where fixes drop helper binaries; it is prepended to PATH.
func localBinDir(appDir string) string {
	return filepath.Join(appDir, "bin")
}

func ensureLocalBinOnPATH(appDir string) error {
	binDir := localBinDir(appDir)
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}

	current := os.Getenv("PATH")
	for _, entry := range filepath.SplitList(current) {
		if filepath.Clean(entry) == filepath.Clean(binDir) {
			return nil
		}
	}

	if current == "" {
		return os.Setenv("PATH", binDir)
	}
	return os.Setenv("PATH", binDir+string(os.PathListSeparator)+current)
}
