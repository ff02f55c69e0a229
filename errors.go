package workpool

import "errors"

const Namespace = "workpool"

var (
	ErrInvalidSize    = errors.New(Namespace + ": pool size must be a positive integer")
	ErrInvalidConfig  = errors.New(Namespace + ": invalid configuration")
	ErrNilItem        = errors.New(Namespace + ": cannot add a nil work item")
	ErrAlreadyStarted = errors.New(Namespace + ": pool is already started")
	ErrPoolStopped    = errors.New(Namespace + ": pool is stopped")
	ErrJobPanicked    = errors.New(Namespace + ": job execution panicked")
)
