package preflight

import (
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// CheckDaemonLock reports whether a daemon currently holds the
// single-instance lock at path. Passed means a daemon is running.
func CheckDaemonLock(path string) Result {
	const name = "Daemon"
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: "not running"}
		}
		return Result{Name: name, Detail: fmt.Sprintf("lock unreadable: %v", err)}
	}
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("lock check failed: %v", err)}
	}
	if locked {
		_ = lock.Unlock()
		return Result{Name: name, Detail: "not running"}
	}
	return Result{Name: name, Passed: true, Detail: "running"}
}
