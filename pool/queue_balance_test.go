package pool

import "testing"

func TestBalanceQueue_FIFO(t *testing.T) {
	q := newBalanceQueue(0)
	order := make([]int, 0, 3)

	for i := 0; i < 3; i++ {
		i := i
		if !q.TryPush(NewTask(func() { order = append(order, i) })) {
			t.Fatalf("push %d refused on unbounded queue", i)
		}
	}

	for i := 0; i < 3; i++ {
		task, ok := q.Pop()
		if !ok {
			t.Fatalf("expected task %d, queue empty", i)
		}
		task.Invoke()
	}

	for i, v := range order {
		if v != i {
			t.Fatalf("expected push order preserved, got %v", order)
		}
	}
}

func TestBalanceQueue_BoundedRejectsOverflow(t *testing.T) {
	q := newBalanceQueue(2)

	if !q.TryPush(NewTask(func() {})) {
		t.Fatal("expected first push to succeed")
	}
	if !q.TryPush(NewTask(func() {})) {
		t.Fatal("expected second push to succeed (at capacity)")
	}
	if q.TryPush(NewTask(func() {})) {
		t.Fatal("expected third push to be refused (over capacity)")
	}
}

func TestBalanceQueue_BatchAllOrNothing(t *testing.T) {
	q := newBalanceQueue(2)
	batch := []Task{NewTask(func() {}), NewTask(func() {}), NewTask(func() {})}

	if q.TryPushBatch(batch) {
		t.Fatal("expected oversized batch to be refused entirely")
	}
	if q.Len() != 0 {
		t.Fatalf("expected no partial admission, queue len=%d", q.Len())
	}
}

func TestBalanceQueue_LenTracksPushAndPop(t *testing.T) {
	q := newBalanceQueue(0)
	for i := 0; i < 5; i++ {
		q.TryPush(NewTask(func() {}))
	}
	if q.Len() != 5 {
		t.Fatalf("expected len 5, got %d", q.Len())
	}
	q.Pop()
	q.Pop()
	if q.Len() != 3 {
		t.Fatalf("expected len 3 after two pops, got %d", q.Len())
	}
}
