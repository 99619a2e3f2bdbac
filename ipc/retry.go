package ipc

import (
	"context"
	"expvar"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

var dialRetries = expvar.NewInt("ipc.dialRetries")

const (
	DefaultRetryInterval = time.Millisecond * 50
	DefaultRetryAttempts = 20
)

// RetryDialer wraps Dial for callers that want to keep trying while the
// endpoint does not exist yet, such as clients racing a server that is
// still starting. Unlike the busy handling inside Dial, every dial failure
// is considered transient here.
type RetryDialer struct {
	Logger *zap.Logger
	// Interval between attempts. Defaults to DefaultRetryInterval.
	Interval time.Duration
	// Attempts before giving up. Defaults to DefaultRetryAttempts.
	Attempts uint
}

func (d *RetryDialer) Dial(ctx context.Context, path string) (*Conn, error) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := d.Interval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	attempts := d.Attempts
	if attempts == 0 {
		attempts = DefaultRetryAttempts
	}
	return retry.DoWithData(func() (*Conn, error) {
		return Dial(ctx, path)
	},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			dialRetries.Add(1)
			logger.Debug("ipc: retrying dial",
				zap.String("endpoint", path),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
}
