// Package retry implements the async task retry/backoff policy as a
// pair of pure functions, kept free of storage and scheduling concerns
// so the curve can be unit tested in isolation.
package retry

// capSeconds bounds the exponential branch of Backoff so a long-failing
// task doesn't push next_run_time arbitrarily far into the future.
const capSeconds = 60

// Backoff returns the delay, in seconds, before retry attempt n
// (1-indexed: n=1 is the delay before the first retry) given a task's
// configured base interval.
//
// base > 0 yields a flat backoff of base seconds on every retry. base
// == 0 switches to capped exponential backoff: 2^(n-1) seconds, capped
// at capSeconds.
func Backoff(n, base int) int64 {
	if base > 0 {
		return int64(base)
	}
	if n < 1 {
		n = 1
	}
	delay := 1 << uint(n-1)
	if delay > capSeconds {
		delay = capSeconds
	}
	return int64(delay)
}

// Exhausted reports whether a task has used up its retry budget: once
// retry_count exceeds max_retries, no further attempt is made and the
// task moves to permanently_failed rather than pending.
func Exhausted(retryCount, maxRetries int) bool {
	return retryCount > maxRetries
}
