package systems

import (
	"sync"

	"github.com/spaghettifunk/anima-cubes/engine/core"
	"github.com/spaghettifunk/anima-cubes/engine/renderer/metadata"
)

type JobSystem struct {
	numWorkers int
	jobQueue   chan metadata.JobTask
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewJobSystem starts numWorkers goroutines. newState, when non-nil, is
// called once per worker and its result is stored in the worker's
// metadata.WorkerState.Data.
func NewJobSystem(numWorkers int, queueSize int, newState func(worker int) interface{}) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, core.ErrNoWorkers
	}
	if queueSize < 0 {
		return nil, core.ErrNegativeQueueSize
	}

	jq := make(chan metadata.JobTask, queueSize)
	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   jq,
	}

	js.start(newState)

	return js, nil
}

func (js *JobSystem) start(newState func(worker int) interface{}) {
	for i := 0; i < js.numWorkers; i++ {
		state := &metadata.WorkerState{Index: i}
		if newState != nil {
			state.Data = newState(i)
		}
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				run(job, state)
			}
		}()
	}
}

func run(job metadata.JobTask, state *metadata.WorkerState) {
	// Run the job and handle potential errors
	result, err := job.OnStart(state, job.InputParams)
	if err != nil {
		core.LogError(err.Error())
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
	} else if job.OnComplete != nil {
		job.OnComplete(result)
	}

	// Call the completion callback if set
	if job.OnCompletionCallback != nil {
		job.OnCompletionCallback()
	}
}

// Workers returns the size of the pool.
func (js *JobSystem) Workers() int {
	return js.numWorkers
}

/**
 * @brief Shuts the job system down. Queued jobs are drained before it returns.
 */
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if js.closed {
		js.mu.Unlock()
		return core.ErrAlreadyShutdown
	}
	js.closed = true
	close(js.jobQueue)
	js.mu.Unlock()

	js.wg.Wait()
	return nil
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while the queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt metadata.JobTask) error {
	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.closed {
		return core.ErrAlreadyShutdown
	}
	js.jobQueue <- jt
	return nil
}
