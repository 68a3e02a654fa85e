package systems

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spaghettifunk/anima-cubes/engine/core"
	"github.com/spaghettifunk/anima-cubes/engine/renderer/metadata"
)

func TestNewJobSystemValidation(t *testing.T) {
	if _, err := NewJobSystem(0, 1, nil); !errors.Is(err, core.ErrNoWorkers) {
		t.Errorf("got %v, want ErrNoWorkers", err)
	}
	if _, err := NewJobSystem(1, -1, nil); !errors.Is(err, core.ErrNegativeQueueSize) {
		t.Errorf("got %v, want ErrNegativeQueueSize", err)
	}
}

func TestJobSystemRunsAllJobs(t *testing.T) {
	js, err := NewJobSystem(4, 0, func(worker int) interface{} { return worker })
	if err != nil {
		t.Fatal(err)
	}

	var completed, failed, callbacks atomic.Int32
	var mu sync.Mutex
	seenWorkers := map[int]bool{}

	const jobs = 64
	for i := 0; i < jobs; i++ {
		err := js.Submit(metadata.JobTask{
			OnStart: func(w *metadata.WorkerState, params interface{}) (interface{}, error) {
				if w.Data.(int) != w.Index {
					t.Errorf("worker state mismatch: %v vs %d", w.Data, w.Index)
				}
				mu.Lock()
				seenWorkers[w.Index] = true
				mu.Unlock()
				if params.(int)%2 == 1 {
					return nil, errors.New("odd")
				}
				return params, nil
			},
			OnComplete:           func(interface{}) { completed.Add(1) },
			OnFailure:            func(error) { failed.Add(1) },
			OnCompletionCallback: func() { callbacks.Add(1) },
			InputParams:          i,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := js.Shutdown(); err != nil {
		t.Fatal(err)
	}

	if completed.Load() != jobs/2 || failed.Load() != jobs/2 || callbacks.Load() != jobs {
		t.Errorf("completed=%d failed=%d callbacks=%d", completed.Load(), failed.Load(), callbacks.Load())
	}
	if len(seenWorkers) == 0 {
		t.Error("no worker ran")
	}
}

func TestJobSystemSubmitAfterShutdown(t *testing.T) {
	js, err := NewJobSystem(1, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := js.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if err := js.Submit(metadata.JobTask{}); !errors.Is(err, core.ErrAlreadyShutdown) {
		t.Errorf("got %v, want ErrAlreadyShutdown", err)
	}
	if err := js.Shutdown(); !errors.Is(err, core.ErrAlreadyShutdown) {
		t.Errorf("second shutdown: got %v", err)
	}
}
