package core

import (
	"errors"
)

var (
	ErrInvalidID         = errors.New("invalid id")
	ErrRegistryFull      = errors.New("no free slot left in registry")
	ErrNotInitialized    = errors.New("system used before initialization")
	ErrAlreadyShutdown   = errors.New("system already shut down")
	ErrNoWorkers         = errors.New("attempting to create worker pool with less than 1 worker")
	ErrNegativeQueueSize = errors.New("attempting to create worker pool with a negative queue size")
	ErrEngineNotReady    = errors.New("engine is not in a state to perform this operation")
)
