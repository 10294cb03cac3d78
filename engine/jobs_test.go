package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestJobSystemRunCoversRange(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		n       int
	}{
		{"inline", 1, 100},
		{"parallel", 4, 1000},
		{"fewer items than workers", 8, 3},
		{"empty", 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			js := NewJobSystem(tt.workers, DefaultMaxJobs, DefaultMaxBarriers)
			defer js.Close()

			visited := make([]int32, tt.n)
			err := js.Run(context.Background(), tt.n, func(start, end int) error {
				for i := start; i < end; i++ {
					atomic.AddInt32(&visited[i], 1)
				}
				return nil
			})
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			for i, v := range visited {
				if v != 1 {
					t.Fatalf("index %d visited %d times", i, v)
				}
			}
		})
	}
}

func TestJobSystemError(t *testing.T) {
	js := NewJobSystem(4, DefaultMaxJobs, DefaultMaxBarriers)
	defer js.Close()

	boom := errors.New("boom")
	err := js.Run(context.Background(), 100, func(start, end int) error {
		if start == 0 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestJobSystemClosed(t *testing.T) {
	js := NewJobSystem(2, DefaultMaxJobs, DefaultMaxBarriers)
	js.Close()
	js.Close()

	// a free barrier slot must not let work through
	for i := range 200 {
		ran := false
		err := js.Run(context.Background(), 10, func(start, end int) error {
			ran = true
			return nil
		})
		if !errors.Is(err, ErrJobSystemClosed) || ran {
			t.Fatalf("run %d: err = %v, ran = %t, want ErrJobSystemClosed", i, err, ran)
		}
	}
}

func TestNilJobSystemRunsInline(t *testing.T) {
	var js *JobSystem
	sum := 0
	err := js.Run(context.Background(), 10, func(start, end int) error {
		for i := start; i < end; i++ {
			sum += i
		}
		return nil
	})
	if err != nil || sum != 45 {
		t.Errorf("err = %v, sum = %d, want nil, 45", err, sum)
	}
}

func TestJobSystemDefaults(t *testing.T) {
	js := NewJobSystem(0, 0, 0)
	if js.Workers() != DefaultWorkers() {
		t.Errorf("workers = %d, want %d", js.Workers(), DefaultWorkers())
	}
	if js.MaxJobs() != DefaultMaxJobs {
		t.Errorf("max jobs = %d, want %d", js.MaxJobs(), DefaultMaxJobs)
	}
	if cap(js.barriers) != DefaultMaxBarriers {
		t.Errorf("barriers = %d, want %d", cap(js.barriers), DefaultMaxBarriers)
	}
}

func TestForEach(t *testing.T) {
	js := NewJobSystem(4, DefaultMaxJobs, DefaultMaxBarriers)
	defer js.Close()

	data := make([]int, 500)
	for i := range data {
		data[i] = i
	}

	var sum atomic.Int64
	if err := ForEach(context.Background(), js, data, func(v int) { sum.Add(int64(v)) }); err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if sum.Load() != 499*500/2 {
		t.Errorf("sum = %d", sum.Load())
	}
}

func BenchmarkJobSystemRun(b *testing.B) {
	js := NewJobSystem(DefaultWorkers(), DefaultMaxJobs, DefaultMaxBarriers)
	defer js.Close()
	data := make([]float64, 4096)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = js.Run(context.Background(), len(data), func(start, end int) error {
			for k := start; k < end; k++ {
				data[k] = data[k]*0.5 + 1
			}
			return nil
		})
	}
}
