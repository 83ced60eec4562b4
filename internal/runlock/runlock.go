// Package runlock guards against concurrent pipeline runs over the same
// library with an advisory file lock.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"langmux/internal/services"
)

// Lock is a held single-instance lock.
type Lock struct {
	fl   *flock.Flock
	path string
}

// Acquire takes the advisory lock at path, polling up to attempts times with
// the given backoff between tries. Acquisition is non-blocking per attempt so
// a stuck holder cannot wedge the caller indefinitely.
func Acquire(path string, attempts int, backoff time.Duration) (*Lock, error) {
	if attempts < 1 {
		attempts = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "runlock", "acquire", fmt.Sprintf("create %s", filepath.Dir(path)), err)
	}

	fl := flock.New(path)
	for attempt := 1; ; attempt++ {
		locked, err := fl.TryLock()
		if err != nil {
			return nil, services.Wrap(services.ErrFilesystem, "runlock", "acquire", fmt.Sprintf("lock %s", path), err)
		}
		if locked {
			return &Lock{fl: fl, path: path}, nil
		}
		if attempt >= attempts {
			return nil, services.Wrap(services.ErrValidation, "runlock", "acquire",
				fmt.Sprintf("another instance holds %s after %d attempts", path, attempts), nil)
		}
		time.Sleep(backoff)
	}
}

// Release drops the lock. The lock file itself is left in place; removing it
// would race a concurrent acquirer.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}
