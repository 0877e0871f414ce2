package ratelimit

import "context"

// Semaphore bounds the number of concurrent in-flight operations against a
// single external dependency, regardless of how many callers are active.
type Semaphore struct {
	permits chan struct{}
}

// NewSemaphore creates a semaphore with the given number of permits.
func NewSemaphore(size int) *Semaphore {
	if size <= 0 {
		size = 1
	}
	return &Semaphore{permits: make(chan struct{}, size)}
}

// Acquire blocks until a permit is available or the context is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.permits <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a permit. Must be paired with a successful Acquire.
func (s *Semaphore) Release() {
	<-s.permits
}

// InFlight reports the number of permits currently held.
func (s *Semaphore) InFlight() int {
	return len(s.permits)
}
