package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingCycler struct {
	calls atomic.Int32
	err   error
}

func (c *countingCycler) Sync(context.Context) (CycleResult, error) {
	c.calls.Add(1)
	return CycleResult{}, c.err
}

func TestStartPoller_RunsImmediatelyAndOnTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &countingCycler{}

	done := StartPoller(ctx, c, 5*time.Millisecond, nil)

	deadline := time.After(2 * time.Second)
	for c.calls.Load() < 3 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("poller ran %d cycles, want at least 3", c.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestStartPoller_KeepsPollingAfterFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &countingCycler{err: errors.New("remote down")}

	done := StartPoller(ctx, c, 5*time.Millisecond, nil)

	deadline := time.After(2 * time.Second)
	for c.calls.Load() < 3 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("poller stopped after %d failed cycles", c.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestStartPoller_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &countingCycler{}

	done := StartPoller(ctx, c, time.Hour, nil)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("poller did not stop after cancel")
	}
	if got := c.calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want the initial cycle only", got)
	}
}
