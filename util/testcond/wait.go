package testcond

import (
	"fmt"
	"time"
)

// WaitFor polls eval at the given interval until it reports true or the
// timeout elapses.
func WaitFor(eval func() bool, interval time.Duration, timeout time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		if eval() {
			return nil
		}
		select {
		case <-ticker.C:
		case <-deadline.C:
			return fmt.Errorf("timed out after %s waiting for condition", timeout)
		}
	}
}
