package export

import (
	"errors"
	"fmt"
)

// RetryableError marks a transport failure during upload. The scheduler
// should re-deliver the same batch later; the pipeline itself never
// retries.
type RetryableError struct {
	Key string
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("export: retryable upload failure for %s: %v", e.Key, e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err signals that the batch should be
// re-delivered.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}
