package backoff

import (
	"sync"
	"testing"
	"time"
)

func TestDecorrelated_NextDelay(t *testing.T) {
	tests := []struct {
		name         string
		initialDelay time.Duration
		maxDelay     time.Duration
		pollCount    int
		wantMin      time.Duration
		wantMax      time.Duration
	}{
		{
			name:         "first poll returns initial delay",
			initialDelay: 100 * time.Millisecond,
			maxDelay:     10 * time.Second,
			pollCount:    0,
			wantMin:      100 * time.Millisecond,
			wantMax:      100 * time.Millisecond,
		},
		{
			name:         "second poll between initial and 3x initial",
			initialDelay: 100 * time.Millisecond,
			maxDelay:     10 * time.Second,
			pollCount:    1,
			wantMin:      100 * time.Millisecond,
			wantMax:      300 * time.Millisecond,
		},
		{
			name:         "respects max delay",
			initialDelay: 1 * time.Second,
			maxDelay:     2 * time.Second,
			pollCount:    10,
			wantMin:      1 * time.Second,
			wantMax:      2 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDecorrelated(tt.initialDelay, tt.maxDelay)

			var delay time.Duration
			for i := 0; i <= tt.pollCount; i++ {
				delay = d.NextDelay(i)
			}

			if delay < tt.wantMin || delay > tt.wantMax {
				t.Errorf("NextDelay() = %v, want between %v and %v", delay, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestDecorrelated_Reset(t *testing.T) {
	initialDelay := 100 * time.Millisecond
	d := newDecorrelated(initialDelay, 10*time.Second)

	d.NextDelay(0)
	d.NextDelay(1)
	d.NextDelay(2)

	d.Reset()

	if delay := d.NextDelay(0); delay != initialDelay {
		t.Errorf("after Reset(), NextDelay(0) = %v, want %v", delay, initialDelay)
	}
}

func TestDecorrelated_ThreadSafety(t *testing.T) {
	d := newDecorrelated(10*time.Millisecond, 1*time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(poll int) {
			defer wg.Done()
			d.NextDelay(poll % 10)
		}(i)
	}
	wg.Wait()
}

func TestJittered_NextDelay(t *testing.T) {
	tests := []struct {
		name         string
		initialDelay time.Duration
		maxDelay     time.Duration
		jitterFactor float64
		pollCount    int
		wantMin      time.Duration
		wantMax      time.Duration
	}{
		{
			name:         "first poll with jitter",
			initialDelay: 100 * time.Millisecond,
			maxDelay:     10 * time.Second,
			jitterFactor: 0.1,
			pollCount:    0,
			wantMin:      90 * time.Millisecond,
			wantMax:      110 * time.Millisecond,
		},
		{
			name:         "negative poll count returns zero",
			initialDelay: 100 * time.Millisecond,
			maxDelay:     10 * time.Second,
			jitterFactor: 0.1,
			pollCount:    -1,
			wantMin:      0,
			wantMax:      0,
		},
		{
			name:         "zero jitter factor",
			initialDelay: 100 * time.Millisecond,
			maxDelay:     10 * time.Second,
			jitterFactor: 0.0,
			pollCount:    0,
			wantMin:      100 * time.Millisecond,
			wantMax:      100 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := newJittered(tt.initialDelay, tt.maxDelay, tt.jitterFactor)
			delay := j.NextDelay(tt.pollCount)

			if delay < tt.wantMin || delay > tt.wantMax {
				t.Errorf("NextDelay() = %v, want between %v and %v", delay, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestJittered_FactorClamping(t *testing.T) {
	for _, jitterFactor := range []float64{-0.5, 1.5, 0.3} {
		j := newJittered(100*time.Millisecond, 10*time.Second, jitterFactor)
		delay := j.NextDelay(0)
		if delay < 0 || delay > 10*time.Second {
			t.Errorf("jitterFactor=%v: NextDelay() = %v, want between 0 and 10s", jitterFactor, delay)
		}
	}
}

func TestExponential_NextDelay(t *testing.T) {
	tests := []struct {
		name      string
		pollCount int
		want      time.Duration
	}{
		{"first poll", 0, 100 * time.Millisecond},
		{"second poll", 1, 200 * time.Millisecond},
		{"third poll", 2, 400 * time.Millisecond},
		{"negative poll count returns zero", -1, 0},
	}

	e := newExponential(100*time.Millisecond, 10*time.Second)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.NextDelay(tt.pollCount); got != tt.want {
				t.Errorf("NextDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExponential_RespectsMaxDelay(t *testing.T) {
	e := newExponential(1*time.Second, 5*time.Second)
	if got := e.NextDelay(10); got != 5*time.Second {
		t.Errorf("NextDelay(10) = %v, want %v", got, 5*time.Second)
	}
}

func TestNew(t *testing.T) {
	for _, typ := range []Type{Exponential, Jittered, Decorrelated} {
		s := New(typ, 10*time.Millisecond, time.Second, 0.1)
		if s == nil {
			t.Fatalf("New(%v) returned nil", typ)
		}
		if delay := s.NextDelay(0); delay <= 0 {
			t.Errorf("New(%v).NextDelay(0) = %v, want > 0", typ, delay)
		}
	}
}
