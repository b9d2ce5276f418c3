package transport

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chainwatch-dev/chainwatch/internal/hexid"
	"github.com/chainwatch-dev/chainwatch/telemetry"
)

type fakeNodeClient struct {
	fail atomic.Bool
}

func (f *fakeNodeClient) GetBlock(ctx context.Context, hash hexid.Hash32) (Block, error) {
	return Block{}, nil
}

func (f *fakeNodeClient) Ping(ctx context.Context) error {
	if f.fail.Load() {
		return errors.New("parent node unreachable")
	}
	return nil
}

func TestNodeHealthMonitorNormalToDegraded(t *testing.T) {
	node := &fakeNodeClient{}
	node.fail.Store(true)

	cfg := HealthMonitorConfig{HealthInterval: time.Millisecond, FailThreshold: 3}
	mon := NewNodeHealthMonitor(cfg, node, telemetry.Background(), nil)
	if mon.State() != NodeNormal {
		t.Fatal("expected initial state NORMAL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	go mon.Run(ctx)

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if mon.State() == NodeDegraded {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if mon.State() != NodeDegraded {
		t.Fatalf("expected DEGRADED after %d failures, got %s", cfg.FailThreshold, mon.State())
	}
}

func TestNodeHealthMonitorRecovery(t *testing.T) {
	node := &fakeNodeClient{}
	node.fail.Store(true)

	cfg := HealthMonitorConfig{HealthInterval: 2 * time.Millisecond, FailThreshold: 3}
	mon := NewNodeHealthMonitor(cfg, node, telemetry.Background(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go mon.Run(ctx)

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if mon.State() == NodeDegraded {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if mon.State() != NodeDegraded {
		t.Fatal("did not reach DEGRADED")
	}

	node.fail.Store(false)

	deadline = time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if mon.State() == NodeNormal {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if mon.State() != NodeNormal {
		t.Fatalf("expected recovery to NORMAL, got %s", mon.State())
	}
}

func TestNodeHealthMonitorUnreachableTimeout(t *testing.T) {
	node := &fakeNodeClient{}
	node.fail.Store(true)
	unreachableCalled := make(chan struct{}, 1)

	cfg := HealthMonitorConfig{
		HealthInterval:     2 * time.Millisecond,
		FailThreshold:      2,
		UnreachableTimeout: 20 * time.Millisecond,
	}
	mon := NewNodeHealthMonitor(cfg, node, telemetry.Background(), func() { unreachableCalled <- struct{}{} })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go mon.Run(ctx)

	select {
	case <-unreachableCalled:
	case <-time.After(1 * time.Second):
		t.Fatal("onUnreachable was not called within timeout")
	}

	if mon.State() != NodeUnreachable {
		t.Fatalf("expected UNREACHABLE state, got %s", mon.State())
	}
}
