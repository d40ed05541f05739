package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
)

func TestRegisterJob(t *testing.T) {
	service := NewService(arbor.NewLogger())

	err := service.RegisterJob("quota-reset", "0 0 * * *", "daily reset", func() error { return nil })
	if err != nil {
		t.Fatalf("RegisterJob: %v", err)
	}

	if err := service.RegisterJob("quota-reset", "0 0 * * *", "dup", func() error { return nil }); err == nil {
		t.Error("duplicate registration must fail")
	}

	if err := service.RegisterJob("bad", "not a cron expr", "x", func() error { return nil }); err == nil {
		t.Error("invalid schedule must fail")
	}

	jobs := service.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs))
	}
	if jobs[0].Name != "quota-reset" || jobs[0].Schedule != "0 0 * * *" {
		t.Errorf("unexpected job snapshot: %+v", jobs[0])
	}
}

func TestRegisterAfterStartFails(t *testing.T) {
	service := NewService(arbor.NewLogger())
	if err := service.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer service.Stop()

	if err := service.RegisterJob("late", "* * * * *", "too late", func() error { return nil }); err == nil {
		t.Error("registration after Start must fail")
	}
	if err := service.Start(); err == nil {
		t.Error("double Start must fail")
	}
}

func TestJobFires(t *testing.T) {
	service := NewService(arbor.NewLogger())

	var fired atomic.Int32
	// @every accepts sub-minute intervals, unlike the 5-field specs used in
	// production schedules.
	if err := service.RegisterJob("tick", "@every 100ms", "test tick", func() error {
		fired.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("RegisterJob: %v", err)
	}

	if err := service.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for fired.Load() == 0 {
		select {
		case <-deadline:
			service.Stop()
			t.Fatal("job did not fire within deadline")
		case <-time.After(50 * time.Millisecond):
		}
	}
	service.Stop()
}

func TestJobErrorRecorded(t *testing.T) {
	service := NewService(arbor.NewLogger())

	var fired atomic.Int32
	if err := service.RegisterJob("failing", "@every 100ms", "always fails", func() error {
		fired.Add(1)
		return errors.New("boom")
	}); err != nil {
		t.Fatalf("RegisterJob: %v", err)
	}
	if err := service.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for fired.Load() == 0 {
		select {
		case <-deadline:
			service.Stop()
			t.Fatal("job did not fire within deadline")
		case <-time.After(50 * time.Millisecond):
		}
	}
	service.Stop()

	jobs := service.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs))
	}
	if jobs[0].LastError != "boom" {
		t.Errorf("LastError = %q, want boom", jobs[0].LastError)
	}
	if jobs[0].LastRun == nil {
		t.Error("LastRun must be set after a fire")
	}
}
