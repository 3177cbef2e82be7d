package fetcher

import "github.com/flanksource/jsvm/pkg/lock"

// CheckFetched implements a double-checked idempotence guard:
// predicate is evaluated lock-free first; if it's already true, no lock
// is taken at all (the common "already installed" case runs fully
// concurrently). Otherwise the Lock is acquired and predicate is
// evaluated again, since another process may have finished the fetch
// while this one was waiting. Only if it's still false does this
// function report that a fetch is needed, returning the held guard for
// the caller to Release once the fetch (or its failure) is complete.
func CheckFetched(lockPath string, predicate func() bool) (needsFetch bool, guard *lock.Guard, err error) {
	if predicate() {
		return false, nil, nil
	}

	g, err := lock.Acquire(lockPath)
	if err != nil {
		return false, nil, err
	}

	if predicate() {
		if relErr := g.Release(); relErr != nil {
			return false, nil, relErr
		}
		return false, nil, nil
	}

	return true, g, nil
}
