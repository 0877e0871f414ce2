package utils

import (
	"context"
	"math/rand"
	"runtime/debug"
	"time"

	"github.com/ClementStand/chmsa-intel-fetcher/pkg/logger"
)

// GoSafe runs fn in a goroutine and recovers panics so one failing task can
// never take down sibling work.
func GoSafe(log *logger.Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Recovered from panic in goroutine",
					logger.Field("panic", r),
					logger.StringField("stack", string(debug.Stack())),
				)
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether the context is still live, logging once when
// it is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Warn("Context cancelled, stopping work", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}

// SleepJitter sleeps for a uniformly random duration in [min, max), returning
// early if the context is cancelled.
func SleepJitter(ctx context.Context, min, max time.Duration) {
	d := min
	if max > min {
		d = min + time.Duration(rand.Int63n(int64(max-min)))
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
