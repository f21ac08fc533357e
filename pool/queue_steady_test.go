package pool

import "testing"

func TestDualQueue_SwapMovesPublicToBuffer(t *testing.T) {
	q := newDualQueue(0)
	q.TryPush(NewTask(func() {}))
	q.TryPush(NewTask(func() {}))

	if !q.BufferEmpty() {
		t.Fatal("expected buffer empty before first swap")
	}
	if !q.Swap() {
		t.Fatal("expected swap to succeed with non-empty public queue")
	}
	if q.Swap() {
		t.Fatal("expected second swap on empty public queue to fail")
	}

	count := 0
	for {
		if _, ok := q.PopBuffer(); !ok {
			break
		}
		count++
	}
	if count != 2 {
		t.Fatalf("expected 2 tasks drained from buffer, got %d", count)
	}
}

func TestDualQueue_FIFOAcrossSwaps(t *testing.T) {
	q := newDualQueue(0)
	var order []int

	push := func(i int) {
		q.TryPush(NewTask(func() { order = append(order, i) }))
	}

	drain := func() {
		for {
			task, ok := q.PopBuffer()
			if !ok {
				return
			}
			task.Invoke()
		}
	}

	push(1)
	push(2)
	q.Swap()
	drain()

	push(3)
	q.Swap()
	drain()

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected FIFO order %v, got %v", want, order)
		}
	}
}

func TestDualQueue_BoundedCombinedCapacity(t *testing.T) {
	q := newDualQueue(2)
	if !q.TryPush(NewTask(func() {})) {
		t.Fatal("expected first push to succeed")
	}
	q.Swap() // moves the one task into the buffer; combined size still 1
	if !q.TryPush(NewTask(func() {})) {
		t.Fatal("expected second push to succeed (buffer+public == 2, at capacity)")
	}
	if q.TryPush(NewTask(func() {})) {
		t.Fatal("expected third push to be refused over combined capacity")
	}
}
