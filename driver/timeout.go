package driver

import (
	"fmt"
	"runtime"
	"time"
)

// TimeoutError reports how long a bounded wait ran before giving up, and
// the budget it was allotted, per spec section 4.2.
type TimeoutError struct {
	Elapsed time.Duration
	Budget  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s (budget %s)", e.Elapsed, e.Budget)
}

// Timeout is a deadline object offering a bounded spin-wait over an
// arbitrary predicate, generalizing the teacher's internal/reg.WaitFor
// (which is specialized to a single register bit) to any caller-supplied
// condition.
type Timeout struct {
	Budget time.Duration
}

// NewTimeout constructs a Timeout with a microsecond budget, matching the
// Timeout(us) constructor named in section 4.2.
func NewTimeout(us int64) Timeout {
	return Timeout{Budget: time.Duration(us) * time.Microsecond}
}

// Wait spins calling pred until it returns true or the budget is exhausted,
// yielding the scheduler between polls. On expiry it returns a driver.Error
// wrapping a *TimeoutError with the elapsed/budget pair.
func (t Timeout) Wait(pred func() bool) error {
	start := time.Now()

	for !pred() {
		runtime.Gosched()

		if elapsed := time.Since(start); elapsed >= t.Budget {
			te := &TimeoutError{Elapsed: elapsed, Budget: t.Budget}
			return &Error{Kind: TimeoutKind, Timeout: te, msg: te.Error()}
		}
	}

	return nil
}
