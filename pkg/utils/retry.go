package utils

import "fmt"

// RetryError reports an action that kept failing until its attempt
// budget ran out. It wraps the last underlying failure.
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error {
	return e.Err
}

// WithRetry invokes action until it succeeds, at most maxAttempts
// times. maxAttempts == 0 retries without bound. Retries are immediate;
// the transport's own timeout is the only pacing.
func WithRetry[T any](maxAttempts int, action func() (T, error)) (T, error) {
	var lastErr error
	for attempt := 1; maxAttempts == 0 || attempt <= maxAttempts; attempt++ {
		v, err := action()
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	var zero T
	return zero, &RetryError{Attempts: maxAttempts, Err: lastErr}
}
