package fetcher

import (
	"errors"
	"os"
	"time"

	"github.com/flanksource/jsvm/pkg/toolerrors"
)

// renameAttempts and renameTotalBackoff bound the retry envelope for
// the final image rename: ~28s spread over 21 attempts, tolerating a
// transient antivirus-scanner file lock on Windows.
const (
	renameAttempts     = 21
	renameTotalBackoff = 28 * time.Second
)

// fibonacciDelays returns n delays summing to total, weighted by the
// Fibonacci sequence so later retries wait longer.
func fibonacciDelays(n int, total time.Duration) []time.Duration {
	fibs := make([]int64, n)
	fibs[0] = 1
	if n > 1 {
		fibs[1] = 1
	}
	var sum int64
	for i := 2; i < n; i++ {
		fibs[i] = fibs[i-1] + fibs[i-2]
	}
	for _, f := range fibs {
		sum += f
	}

	delays := make([]time.Duration, n)
	for i, f := range fibs {
		delays[i] = time.Duration(float64(f) / float64(sum) * float64(total))
	}
	return delays
}

// renameWithBackoff renames src to dst, retrying with Fibonacci backoff
// on a permission-denied error (the signature of an antivirus scanner
// transiently holding the file open) and giving up immediately on any
// other error.
func renameWithBackoff(src, dst string) error {
	delays := fibonacciDelays(renameAttempts-1, renameTotalBackoff)

	var lastErr error
	for i := 0; i < renameAttempts; i++ {
		lastErr = os.Rename(src, dst)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, os.ErrPermission) {
			return &toolerrors.FileSystemError{Op: "rename", Path: dst, Err: lastErr}
		}
		if i < len(delays) {
			time.Sleep(delays[i])
		}
	}
	return &toolerrors.FileSystemError{Op: "rename", Path: dst, Err: lastErr}
}
