package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestAdd_InvalidSpec(t *testing.T) {
	t.Parallel()

	s := New()
	err := s.Add("daily", "not a schedule", func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("Add() error = nil, want parse error")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestAdd_AcceptsSecondsAndDescriptors(t *testing.T) {
	t.Parallel()

	s := New()
	for _, spec := range []string{"0 */5 * * * *", "30 0 0 * * *", "@every 1m", "@hourly"} {
		if err := s.Add("job", spec, func(context.Context) error { return nil }); err != nil {
			t.Errorf("Add(%q) error = %v", spec, err)
		}
	}
	if s.Len() != 4 {
		t.Errorf("Len() = %d, want 4", s.Len())
	}
}

func TestScheduler_RunsAndStops(t *testing.T) {
	t.Parallel()

	s := New()
	var runs atomic.Int32
	ran := make(chan struct{}, 1)
	var sawCancel atomic.Bool
	err := s.Add("tick", "@every 1s", func(ctx context.Context) error {
		runs.Add(1)
		select {
		case ran <- struct{}{}:
		default:
		}
		<-ctx.Done()
		sawCancel.Store(true)
		return ctx.Err()
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	s.Start()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !sawCancel.Load() {
		t.Error("running job did not observe cancellation")
	}
	// The first run blocks until Stop, so every later tick is skipped.
	if n := runs.Load(); n != 1 {
		t.Errorf("runs = %d, want 1", n)
	}
}

func TestCronLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := cronLogger{l: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	l.Info("skip", "entry", 1)
	l.Error(errors.New("boom"), "panic")

	out := buf.String()
	for _, want := range []string{"cron: skip", "entry=1", "cron: panic", "err=boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
