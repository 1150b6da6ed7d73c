package jobs

import (
	"errors"
	"testing"

	"video-compressor/internal/domain"
)

// TestManagerLifecycle verifies normal progression and restart after completion.
func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	if got := m.Current().Status; got != domain.JobStatusIdle {
		t.Fatalf("new manager status = %s, want idle", got)
	}

	if err := m.Start("job-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := m.Current().Status; got != domain.JobStatusRunning {
		t.Fatalf("status after start = %s, want running", got)
	}
	if err := m.Start("job-2"); !errors.Is(err, ErrJobAlreadyRunning) {
		t.Fatalf("second start error = %v, want %v", err, ErrJobAlreadyRunning)
	}

	if err := m.Transition(domain.JobStatusSucceeded); err != nil {
		t.Fatalf("transition to succeeded: %v", err)
	}
	if got := m.Current().Status; got != domain.JobStatusSucceeded {
		t.Fatalf("status after success = %s, want succeeded", got)
	}

	if err := m.Start("job-2"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if got := m.Current(); got.ID != "job-2" || got.Status != domain.JobStatusRunning {
		t.Fatalf("current = %+v", got)
	}
}

// TestManagerRejectsInvalidTransition checks state machine constraints.
func TestManagerRejectsInvalidTransition(t *testing.T) {
	m := NewManager()
	if err := m.Transition(domain.JobStatusSucceeded); err == nil {
		t.Fatal("expected error without an active job")
	}

	if err := m.Start("job-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Transition(domain.JobStatusIdle); err == nil {
		t.Fatal("expected invalid transition error")
	}
}
