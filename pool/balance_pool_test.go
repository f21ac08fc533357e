package pool

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestBalancePool_BatchSubmitDrains(t *testing.T) {
	p := NewBalancePool(8, WithBoundedThrow(800))
	defer p.Close()

	fns := make([]func(), 5)
	for i := range fns {
		fns[i] = func() {}
	}
	if err := p.SubmitBatch(fns); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.WaitForTasks()

	if p.TasksLoaded() != 0 {
		t.Fatalf("expected TasksLoaded 0 after WaitForTasks, got %d", p.TasksLoaded())
	}
}

func TestBalancePool_AdmissionRefusedAtCapacity(t *testing.T) {
	p := NewBalancePool(1, WithBoundedThrow(2))
	defer p.Close()

	started := make(chan struct{})
	block := make(chan struct{})

	// Occupy the single worker so the subsequent submissions land in its
	// queue instead of being picked up immediately.
	if err := p.Submit(func() { close(started); <-block }); err != nil {
		t.Fatalf("unexpected error occupying worker: %v", err)
	}
	<-started

	if err := p.Submit(func() {}); err != nil {
		t.Fatalf("expected submission into an empty queue to succeed, got %v", err)
	}
	if err := p.Submit(func() {}); err != nil {
		t.Fatalf("expected submission at capacity-1 to succeed, got %v", err)
	}
	if err := p.Submit(func() {}); !errors.Is(err, ErrAdmissionRefused) {
		t.Fatalf("expected ErrAdmissionRefused at capacity, got %v", err)
	}

	close(block)
	p.WaitForTasks()
}

func TestBalancePool_LoadBalancerPrefersIdleWorker(t *testing.T) {
	p := NewBalancePool(4)
	defer p.Close()

	p.WaitForTasks() // all idle at start

	// Every worker is idle and the cursor starts at 0, so the first idle
	// candidate the scan meets is worker 0.
	idx := p.selectWorker()
	if idx < 0 || idx >= 4 {
		t.Fatalf("expected a valid worker index, got %d", idx)
	}
	if idx != 0 {
		t.Fatalf("expected the idle worker at the cursor (0), got %d", idx)
	}
}

func TestBalancePool_CloseDrainsBeforeExit(t *testing.T) {
	p := NewBalancePool(4)

	var count atomic.Int64
	total := 100
	for i := 0; i < total; i++ {
		if err := p.Submit(func() { count.Add(1) }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Close already waited for every worker to drain and exit.
	if got := count.Load(); got != int64(total) {
		t.Fatalf("expected all %d tasks invoked before Close returned, got %d", total, got)
	}
}
