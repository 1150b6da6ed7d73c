package bootstrap

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"video-compressor/internal/domain"
	"video-compressor/internal/executor"
	"video-compressor/internal/jobs"
	"video-compressor/internal/presets"
)

// fakeStore returns deterministic settings for App tests.
type fakeStore struct {
	settings domain.Settings
	saved    []domain.Settings
}

// Load returns preconfigured settings.
func (s *fakeStore) Load() (domain.Settings, error) {
	return s.settings, nil
}

// Save records the settings it was given.
func (s *fakeStore) Save(settings domain.Settings) error {
	s.saved = append(s.saved, settings)
	s.settings = settings
	return nil
}

// fakeExecutor allows injecting custom run behavior per test.
type fakeExecutor struct {
	mu    sync.Mutex
	calls [][]string
	run   func(ctx context.Context, args []string) (string, error)
}

// Run records args and delegates to injected function.
func (e *fakeExecutor) Run(ctx context.Context, args []string) (string, error) {
	e.mu.Lock()
	e.calls = append(e.calls, args)
	e.mu.Unlock()
	if e.run == nil {
		return "", nil
	}
	return e.run(ctx, args)
}

func (e *fakeExecutor) Calls() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]string(nil), e.calls...)
}

// emitted is one captured runtime push.
type emitted struct {
	name string
	data interface{}
}

// recorder captures runtime pushes in order.
type recorder struct {
	mu     sync.Mutex
	events []emitted
}

func (r *recorder) emit(_ context.Context, name string, data ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var payload interface{}
	if len(data) > 0 {
		payload = data[0]
	}
	r.events = append(r.events, emitted{name: name, data: payload})
}

func (r *recorder) sessions() []domain.SessionView {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SessionView
	for _, e := range r.events {
		if e.name == SessionChangedEvent {
			out = append(out, e.data.(domain.SessionView))
		}
	}
	return out
}

func (r *recorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.name == name {
			n++
		}
	}
	return n
}

const twoPresets = `presets:
  default:
    label: Default
    description: Balanced quality and size.
    video_codec: libx264
    preset: medium
    crf: 23
  fast:
    label: Fast
    description: Quick encode.
    video_codec: libx264
    preset: veryfast
    crf: 26
`

func writePresets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "default.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write presets: %v", err)
	}
	return path
}

func newTestApp(t *testing.T, presetPath string, exec *fakeExecutor) *App {
	t.Helper()
	store := &fakeStore{settings: domain.Settings{
		PresetConfigPath: presetPath,
		ExecutablePath:   "video-compress",
		LogLevel:         "info",
	}}
	app := newApp(store.settings, store, exec, nil, zerolog.Nop())
	t.Cleanup(func() {
		app.Shutdown(context.Background())
		app.Wait()
	})
	return app
}

// TestEndToEndCompression runs the select, configure, launch, settle flow.
func TestEndToEndCompression(t *testing.T) {
	exec := &fakeExecutor{run: func(context.Context, []string) (string, error) {
		return "done", nil
	}}
	app := newTestApp(t, writePresets(t, twoPresets), exec)

	wantOptions := []domain.PresetOption{
		{Value: "default", Label: "Default", Description: "Balanced quality and size."},
		{Value: "fast", Label: "Fast", Description: "Quick encode."},
	}
	if diff := cmp.Diff(wantOptions, app.GetPresets()); diff != "" {
		t.Fatalf("presets mismatch (-want +got):\n%s", diff)
	}

	app.SelectFiles([]string{"v1.mp4"})
	view := app.SetPreset("fast")
	if view.PresetDescription != "Quick encode." {
		t.Fatalf("description = %q", view.PresetDescription)
	}
	if _, err := app.SetJobs("2"); err != nil {
		t.Fatalf("SetJobs: %v", err)
	}

	app.StartCompression()
	app.Wait()

	view = app.GetSession()
	if view.Running {
		t.Fatal("expected running=false after completion")
	}
	if view.Console != "done" {
		t.Fatalf("console = %q, want done", view.Console)
	}
	if !view.CanLaunch {
		t.Fatal("expected launch to be enabled again")
	}

	wantArgs := [][]string{{"compress", "--jobs", "2", "--preset", "fast", "v1.mp4"}}
	if diff := cmp.Diff(wantArgs, exec.Calls()); diff != "" {
		t.Fatalf("executor args mismatch (-want +got):\n%s", diff)
	}
	if got := app.CurrentJob().Status; got != domain.JobStatusSucceeded {
		t.Fatalf("job status = %s, want succeeded", got)
	}
}

// TestPresetLoadFailureIsolation checks a broken preset file does not block launches.
func TestPresetLoadFailureIsolation(t *testing.T) {
	exec := &fakeExecutor{}
	app := newTestApp(t, filepath.Join(t.TempDir(), "missing.yaml"), exec)

	view := app.GetSession()
	if !strings.HasPrefix(view.Console, "Error loading presets: config file not found") {
		t.Fatalf("console = %q", view.Console)
	}
	if view.Preset != domain.DefaultPresetID {
		t.Fatalf("preset = %q, want default", view.Preset)
	}
	if options := app.GetPresets(); options == nil || len(options) != 0 {
		t.Fatalf("options = %#v, want empty non-nil", options)
	}

	app.SelectFiles([]string{"a.mp4"})
	app.StartCompression()
	app.Wait()

	calls := exec.Calls()
	if len(calls) != 1 {
		t.Fatalf("executor calls = %d, want 1", len(calls))
	}
	if got := calls[0][4]; got != domain.DefaultPresetID {
		t.Fatalf("preset arg = %q, want default", got)
	}
}

// TestFailedCompressionWritesErrorToConsole checks the Error: prefix mapping.
func TestFailedCompressionWritesErrorToConsole(t *testing.T) {
	exec := &fakeExecutor{run: func(context.Context, []string) (string, error) {
		return "", errors.New("unknown preset: turbo")
	}}
	app := newTestApp(t, writePresets(t, twoPresets), exec)

	app.SelectFiles([]string{"a.mp4"})
	app.SetPreset("turbo")
	app.StartCompression()
	app.Wait()

	view := app.GetSession()
	if view.Console != "Error: unknown preset: turbo" {
		t.Fatalf("console = %q", view.Console)
	}
	if view.Running {
		t.Fatal("expected running=false after failure")
	}
}

// TestStartCompressionWithoutFilesIsNoop checks the empty-selection guard.
func TestStartCompressionWithoutFilesIsNoop(t *testing.T) {
	exec := &fakeExecutor{}
	app := newTestApp(t, writePresets(t, twoPresets), exec)

	view := app.StartCompression()
	app.Wait()

	if view.Running || view.CanLaunch {
		t.Fatalf("unexpected view: %+v", view)
	}
	if len(exec.Calls()) != 0 {
		t.Fatal("executor should not be called without files")
	}
}

// TestSetJobsRejectsNonNumeric keeps the previous value on bad input.
func TestSetJobsRejectsNonNumeric(t *testing.T) {
	app := newTestApp(t, writePresets(t, twoPresets), &fakeExecutor{})

	if _, err := app.SetJobs("4"); err != nil {
		t.Fatalf("SetJobs(4): %v", err)
	}
	view, err := app.SetJobs("four")
	if err == nil {
		t.Fatal("expected error for non-numeric jobs")
	}
	if view.Jobs != 4 {
		t.Fatalf("jobs = %d, want 4", view.Jobs)
	}

	view, err = app.SetJobs(" 0 ")
	if err != nil {
		t.Fatalf("SetJobs(0): %v", err)
	}
	if view.Jobs != 0 {
		t.Fatalf("jobs = %d, want 0 passed through", view.Jobs)
	}
}

// TestSelectFilesDropsBlankPaths checks empty entries are dropped, names with
// surrounding spaces survive, and a cancelled picker changes nothing.
func TestSelectFilesDropsBlankPaths(t *testing.T) {
	app := newTestApp(t, writePresets(t, twoPresets), &fakeExecutor{})

	view := app.SelectFiles([]string{"/videos/ padded .mp4 ", ""})
	want := []domain.FileEntry{{Path: "/videos/ padded .mp4 ", Name: " padded .mp4 "}}
	if diff := cmp.Diff(want, view.Files); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}

	view = app.SelectFiles(nil)
	if diff := cmp.Diff(want, view.Files); diff != "" {
		t.Fatalf("cancelled picker changed files (-want +got):\n%s", diff)
	}
}

// TestStateChangesArePushed checks session and job events reach the runtime.
func TestStateChangesArePushed(t *testing.T) {
	release := make(chan struct{})
	exec := &fakeExecutor{run: func(context.Context, []string) (string, error) {
		<-release
		return "ok", nil
	}}
	app := newTestApp(t, writePresets(t, twoPresets), exec)
	rec := &recorder{}
	app.emit = rec.emit
	app.Startup(context.Background())

	app.SelectFiles([]string{"a.mp4"})
	app.StartCompression()
	if !app.GetSession().Running {
		t.Fatal("expected running while executor blocks")
	}
	close(release)
	app.Wait()

	sessions := rec.sessions()
	if len(sessions) < 3 {
		t.Fatalf("session pushes = %d, want >= 3", len(sessions))
	}
	running := sessions[len(sessions)-2]
	if !running.Running || running.LaunchLabel != "Compressing..." {
		t.Fatalf("running push = %+v", running)
	}
	last := sessions[len(sessions)-1]
	if last.Running || last.Console != "ok" {
		t.Fatalf("final push = %+v", last)
	}

	for i := 1; i < len(sessions); i++ {
		if sessions[i].Version <= sessions[i-1].Version {
			t.Fatalf("push %d version %d not after %d", i, sessions[i].Version, sessions[i-1].Version)
		}
	}

	if got, want := rec.count(JobEvent), len(app.JobEvents(0)); got != want {
		t.Fatalf("job pushes = %d, want %d", got, want)
	}
	if app.JobEvents(0)[0].Type != jobs.EventTypeStatus {
		t.Fatalf("first event = %+v", app.JobEvents(0)[0])
	}
}

// TestSaveSettingsNormalizes checks defaults fill blank fields.
func TestSaveSettingsNormalizes(t *testing.T) {
	app := newTestApp(t, writePresets(t, twoPresets), &fakeExecutor{})

	saved, err := app.SaveSettings(domain.Settings{ExecutablePath: "  /opt/bin/video-compress ", LogLevel: "DEBUG"})
	if err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if saved.ExecutablePath != "/opt/bin/video-compress" || saved.LogLevel != "debug" {
		t.Fatalf("saved = %+v", saved)
	}
	if saved.PresetConfigPath == "" {
		t.Fatal("expected default preset path")
	}

	got, err := app.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if diff := cmp.Diff(saved, got); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}
}

// TestPickFilesRequiresRuntime checks dialogs fail cleanly before startup.
func TestPickFilesRequiresRuntime(t *testing.T) {
	app := newTestApp(t, writePresets(t, twoPresets), &fakeExecutor{})
	if _, err := app.PickFiles(); err == nil {
		t.Fatal("expected error without runtime context")
	}
}

// TestEnsureLocalBinOnPATH checks the bin dir is prepended once.
func TestEnsureLocalBinOnPATH(t *testing.T) {
	appDir := t.TempDir()
	t.Setenv("PATH", "/usr/bin")

	for i := 0; i < 2; i++ {
		if err := ensureLocalBinOnPATH(appDir); err != nil {
			t.Fatalf("ensureLocalBinOnPATH: %v", err)
		}
	}

	want := localBinDir(appDir) + string(os.PathListSeparator) + "/usr/bin"
	if got := os.Getenv("PATH"); got != want {
		t.Fatalf("PATH = %q, want %q", got, want)
	}
}

// TestToolReadsSessionPresetFile runs a real process and checks it is pointed
// at the preset file the session loaded, regardless of working directory.
func TestToolReadsSessionPresetFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script tool")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	presetPath := filepath.Join(dir, "gui", "config", "default.yaml")
	if err := presets.Seed(presetPath); err != nil {
		t.Fatalf("seed presets: %v", err)
	}
	tool := filepath.Join(dir, "video-compress")
	script := "#!/bin/sh\nprintf '%s' \"$" + presets.FileEnv + "\"\n"
	if err := os.WriteFile(tool, []byte(script), 0o755); err != nil {
		t.Fatalf("write tool: %v", err)
	}
	t.Chdir(t.TempDir())

	store := &fakeStore{settings: domain.Settings{PresetConfigPath: presetPath, ExecutablePath: tool}}
	cli := executor.New(tool, presetPath, zerolog.Nop())
	app := newApp(store.settings, store, cli, nil, zerolog.Nop())
	cli.OnCommandLog(app.publishCommandLog)
	t.Cleanup(func() {
		app.Shutdown(context.Background())
		app.Wait()
	})

	app.SelectFiles([]string{"a.mp4"})
	app.StartCompression()
	app.Wait()

	if got := app.GetSession().Console; got != presetPath {
		t.Fatalf("tool saw preset file %q, want %q", got, presetPath)
	}

	var logged bool
	for _, e := range app.JobEvents(0) {
		if e.Type == jobs.EventTypeLog {
			logged = true
			if e.JobID != app.CurrentJob().ID || e.Output != presetPath {
				t.Fatalf("log event = %+v", e)
			}
		}
	}
	if !logged {
		t.Fatal("expected a log event for the tool invocation")
	}
}

// TestStaleSessionSnapshotIsNotPushed checks a late snapshot cannot overwrite
// a newer one already sent to the frontend.
func TestStaleSessionSnapshotIsNotPushed(t *testing.T) {
	app := newTestApp(t, writePresets(t, twoPresets), &fakeExecutor{})
	rec := &recorder{}
	app.emit = rec.emit
	app.Startup(context.Background())

	app.SelectFiles([]string{"a.mp4"})
	stale := app.controller.State()
	app.SetJobs("3")

	stale.Running = true
	app.pushSession(stale)

	sessions := rec.sessions()
	if len(sessions) != 2 {
		t.Fatalf("session pushes = %d, want 2", len(sessions))
	}
	if last := sessions[len(sessions)-1]; last.Running || last.Jobs != 3 {
		t.Fatalf("final push = %+v", last)
	}
}

// TestSetPresetOutsideCatalogIsKept checks unknown ids pass through to the tool.
func TestSetPresetOutsideCatalogIsKept(t *testing.T) {
	app := newTestApp(t, writePresets(t, twoPresets), &fakeExecutor{})

	view := app.SetPreset("turbo")
	if view.Preset != "turbo" {
		t.Fatalf("preset = %q, want turbo", view.Preset)
	}
	if view.PresetDescription != "" {
		t.Fatalf("description = %q, want empty", view.PresetDescription)
	}
}
