package guardian

import (
	"context"
	"testing"
	"time"
)

type fakeChecker struct {
	running      bool
	restartCalls int
	restartOK    bool
}

func (f *fakeChecker) IsRunning() bool { return f.running }
func (f *fakeChecker) Restart() bool {
	f.restartCalls++
	if f.restartOK {
		f.running = true
	}
	return f.restartOK
}

func TestTickResetsCountWhenRunning(t *testing.T) {
	g := &Guardian{checker: &fakeChecker{running: true}, cfg: DefaultConfig()}
	if got := g.tick(context.Background(), 2); got != 0 {
		t.Fatalf("expected reset to 0, got %d", got)
	}
}

func TestTickRestartsAndIncrementsOnFailure(t *testing.T) {
	checker := &fakeChecker{running: false, restartOK: false}
	g := &Guardian{checker: checker, cfg: DefaultConfig()}

	got := g.tick(context.Background(), 0)
	if got != 1 {
		t.Fatalf("expected failure count 1, got %d", got)
	}
	if checker.restartCalls != 1 {
		t.Fatalf("expected one restart attempt, got %d", checker.restartCalls)
	}
}

func TestTickSucceedingRestartResetsCount(t *testing.T) {
	checker := &fakeChecker{running: false, restartOK: true}
	g := &Guardian{checker: checker, cfg: DefaultConfig()}

	got := g.tick(context.Background(), 1)
	if got != 0 {
		t.Fatalf("expected reset to 0 after successful restart, got %d", got)
	}
}

func TestTickCooldownAfterMaxConsecutiveRestarts(t *testing.T) {
	checker := &fakeChecker{running: false, restartOK: false}
	cfg := Config{CheckInterval: time.Millisecond, MaxConsecutiveRestarts: 2, Cooldown: 10 * time.Millisecond}
	g := &Guardian{checker: checker, cfg: cfg}

	start := time.Now()
	got := g.tick(context.Background(), 2)
	if got != 0 {
		t.Fatalf("expected count reset after cooldown, got %d", got)
	}
	if elapsed := time.Since(start); elapsed < cfg.Cooldown {
		t.Fatalf("expected tick to block for cooldown, elapsed %s", elapsed)
	}
	if checker.restartCalls != 0 {
		t.Fatalf("expected no restart attempt during cooldown, got %d", checker.restartCalls)
	}
}

func TestStartStop(t *testing.T) {
	checker := &fakeChecker{running: true}
	cfg := Config{CheckInterval: time.Millisecond, MaxConsecutiveRestarts: 3, Cooldown: time.Millisecond}
	g := Start(checker, cfg, nil)
	time.Sleep(5 * time.Millisecond)
	g.Stop()
}
