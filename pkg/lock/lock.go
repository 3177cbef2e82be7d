// Package lock guards every mutation of the managed root with a single
// cross-process exclusive file lock, reentrant within one process via a
// refcount over a package-level guarded handle.
package lock

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"
)

// state is the process-wide lock bookkeeping: one OS file handle shared
// by every acquirer in this process, refcounted so nested acquisitions
// (e.g. fetch-while-holding-install-lock) don't deadlock.
type state struct {
	mu       sync.Mutex
	handle   *flock.Flock
	refcount int
}

var global state

// Guard is returned by Acquire. Calling Release decrements the refcount
// and, at zero, unlocks the OS-level lock.
type Guard struct {
	released bool
}

// Acquire blocks until the process holds the exclusive lock on path,
// rendering a short progress message if it has to wait for a contending
// process. Safe to call repeatedly from within the same process; each
// call must be paired with a Release.
func Acquire(path string) (*Guard, error) {
	global.mu.Lock()
	defer global.mu.Unlock()

	if global.refcount > 0 {
		global.refcount++
		return &Guard{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	fl := flock.New(path)

	ok, err := fl.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Infof("waiting for another process to release the toolchain lock...")
		if err := fl.Lock(); err != nil {
			return nil, err
		}
	}

	global.handle = fl
	global.refcount = 1
	return &Guard{}, nil
}

// Release decrements the refcount; at zero it releases the OS lock. It
// is safe to call at most once per Guard; subsequent calls are no-ops.
func (g *Guard) Release() error {
	if g == nil || g.released {
		return nil
	}
	g.released = true

	global.mu.Lock()
	defer global.mu.Unlock()

	if global.refcount == 0 {
		return nil
	}
	global.refcount--
	if global.refcount > 0 {
		return nil
	}

	h := global.handle
	global.handle = nil
	if h == nil {
		return nil
	}
	return h.Unlock()
}

// Held reports whether this process currently holds the lock (for tests
// and for read-only callers that want to log without acquiring it).
func Held() bool {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.refcount > 0
}
