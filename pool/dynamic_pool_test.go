package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDynamicPool_SubmitBatchForReturnGatheredInOrder(t *testing.T) {
	p := NewDynamicPool(4)
	defer p.Close()

	fns := make([]func() (int, error), 5)
	for i := range fns {
		i := i
		fns[i] = func() (int, error) { return i + 1, nil }
	}

	futures, err := SubmitBatchForReturn(p, fns)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := GatherFutures(ctx, futures)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{1, 2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestDynamicPool_AddWaitForThreadsRunningCount(t *testing.T) {
	p := NewDynamicPool(8)
	defer p.Close()

	p.WaitForThreads()
	if got := p.RunningCount(); got != 8 {
		t.Fatalf("expected initial RunningCount 8, got %d", got)
	}

	if err := p.Add(8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.WaitForThreads()
	if got := p.RunningCount(); got != 16 {
		t.Fatalf("expected RunningCount 16 after add(8), got %d", got)
	}

	if err := p.Adjust(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.ExpectedCount(); got != 0 {
		t.Fatalf("expected ExpectedCount 0 immediately after adjust(0), got %d", got)
	}
	p.WaitForThreads()
	if got := p.RunningCount(); got != 0 {
		t.Fatalf("expected RunningCount to decay to 0, got %d", got)
	}

	if reaped := p.JoinDead(); reaped != 16 {
		t.Fatalf("expected JoinDead to reclaim all 16 workers, got %d", reaped)
	}
	if reaped := p.JoinDead(); reaped != 0 {
		t.Fatalf("expected second JoinDead to reclaim nothing, got %d", reaped)
	}
}

func TestDynamicPool_AddThenDelReturnsToOriginalCount(t *testing.T) {
	p := NewDynamicPool(4)
	defer p.Close()
	p.WaitForThreads()

	if err := p.Add(6); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Del(6); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.ExpectedCount(); got != 4 {
		t.Fatalf("expected ExpectedCount back to 4, got %d", got)
	}
	p.WaitForThreads()
	if got := p.RunningCount(); got != 4 {
		t.Fatalf("expected RunningCount back to 4, got %d", got)
	}
}

func TestDynamicPool_CloseDrainsQueuedTasksBeforeReturning(t *testing.T) {
	p := NewDynamicPool(4)

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
	if got := count.Load(); got != int64(total) {
		t.Fatalf("expected all %d queued tasks invoked before Close returned, got %d", total, got)
	}
}

func TestDynamicPool_CloseIsIdempotent(t *testing.T) {
	p := NewDynamicPool(2)
	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error on first close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}
	if !p.IsClosed() {
		t.Fatal("expected pool to report closed")
	}
	if err := p.Submit(func() {}); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

func TestDynamicPool_DelLeavesWorkForSurvivors(t *testing.T) {
	p := NewDynamicPool(2)
	defer p.Close()
	p.WaitForThreads()

	if err := p.Del(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count atomic.Int64
	total := 50
	for i := 0; i < total; i++ {
		if err := p.Submit(func() { count.Add(1) }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	p.WaitForTasks()

	if got := count.Load(); got != int64(total) {
		t.Fatalf("expected the surviving worker to drain all %d tasks, got %d", total, got)
	}
}
