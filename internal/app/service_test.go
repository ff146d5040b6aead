package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeService struct {
	name     string
	startErr error
	block    bool

	mu      sync.Mutex
	stopped bool
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *fakeService) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func (s *fakeService) wasStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func TestRunnerStopsAllServicesWhenOneFails(t *testing.T) {
	failing := &fakeService{name: "worker", startErr: errors.New("redis unreachable")}
	blocking := &fakeService{name: "http", block: true}

	err := NewRunner(failing, blocking).Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "redis unreachable" {
		t.Fatalf("expected start error, got %v", err)
	}
	if !failing.wasStopped() || !blocking.wasStopped() {
		t.Fatalf("expected every service stopped")
	}
}

func TestRunnerCancelledContextIsClean(t *testing.T) {
	svc := &fakeService{name: "http", block: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewRunner(svc).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("expected nil on cancellation, got %v", err)
	}
	if !svc.wasStopped() {
		t.Fatalf("expected service stopped")
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected error for empty runner")
	}
	if _, _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestNormalizeOptions(t *testing.T) {
	opts := normalizeOptions(Options{})
	if opts.Mode != ModeAll || opts.ShutdownTimeout != 10*time.Second || opts.Logger == nil {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
	if opts.appName() != "reseller-hub" {
		t.Fatalf("unexpected default app name: %s", opts.appName())
	}
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "", want: ModeAll},
		{raw: "API", want: ModeAPI},
		{raw: " worker ", want: ModeWorker},
		{raw: "cron", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseMode(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseMode(%q): expected error", tc.raw)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseMode(%q) = %q, %v; want %q", tc.raw, got, err, tc.want)
		}
	}
	if err := Run(Options{Config: nil, Mode: "cron"}); err == nil {
		t.Fatalf("expected error for missing config")
	}
}

func TestRunnerLogsShutdownReason(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	failing := &fakeService{name: "worker", startErr: errors.New("redis unreachable")}
	blocking := &fakeService{name: "http", block: true}

	runner := NewRunner(failing, blocking).Describe("reseller-hub-test", ModeWorker)
	if err := runner.Run(context.Background(), time.Second, zap.New(core).Sugar()); err == nil {
		t.Fatalf("expected start error")
	}

	failed := logs.FilterMessage("service_failed").All()
	if len(failed) != 1 || failed[0].ContextMap()["service"] != "worker" {
		t.Fatalf("expected one service_failed entry for worker, got %+v", failed)
	}
	shutdown := logs.FilterMessage("runner_shutdown").All()
	if len(shutdown) != 1 {
		t.Fatalf("expected one runner_shutdown entry, got %d", len(shutdown))
	}
	fields := shutdown[0].ContextMap()
	if fields["reason"] != shutdownReasonServiceError || fields["app"] != "reseller-hub-test" || fields["mode"] != ModeWorker {
		t.Fatalf("unexpected shutdown fields: %+v", fields)
	}
}
