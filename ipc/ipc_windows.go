//go:build windows

package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/Microsoft/go-winio"
	"github.com/avast/retry-go/v4"
	"golang.org/x/sys/windows"
)

const (
	// Fixed symmetric in/out buffer size for every pipe instance.
	pipeBufferSize = 65536
	// How long Dial keeps retrying a busy pipe before giving up.
	pipeAvailabilityTimeout = 5 * time.Second
	// Cadence of busy retries within the availability timeout.
	pipeBusyRetryInterval = 50 * time.Millisecond
)

func (e *Endpoint) listen() (net.Listener, Origin, error) {
	// go-winio reserves the name with FILE_FLAG_FIRST_PIPE_INSTANCE on the
	// first instance and creates the replacement instance around each
	// accept, so the name never becomes unavailable between connections
	// and a second listener for the same name fails outright.
	ln, err := winio.ListenPipe(e.path, &winio.PipeConfig{
		InputBufferSize:  pipeBufferSize,
		OutputBufferSize: pipeBufferSize,
	})
	if err != nil {
		return nil, 0, err
	}
	return ln, OriginPipeServer, nil
}

func dial(ctx context.Context, path string) (net.Conn, Origin, error) {
	dialCtx, cancel := context.WithTimeout(ctx, pipeAvailabilityTimeout)
	defer cancel()

	conn, err := retry.DoWithData(func() (net.Conn, error) {
		// Bound each open attempt to one retry interval. go-winio only
		// consults the context while the pipe is busy; a missing or
		// inaccessible name returns immediately. An attempt that ran out
		// its own deadline while the dial as a whole still has time left
		// therefore means every instance was occupied.
		attemptCtx, done := context.WithTimeout(dialCtx, pipeBusyRetryInterval)
		defer done()
		conn, err := winio.DialPipeContext(attemptCtx, path)
		if err != nil && dialCtx.Err() == nil && isBusy(err) {
			return nil, ErrPipeBusy
		}
		return conn, err
	},
		retry.Context(dialCtx),
		retry.UntilSucceeded(),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(IsPipeBusy),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if IsPipeBusy(err) || (errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil) {
			return nil, 0, fmt.Errorf("%w: no instance of %s freed up within %s: %w",
				ErrPipeBusy, path, pipeAvailabilityTimeout, context.DeadlineExceeded)
		}
		return nil, 0, err
	}
	return conn, OriginPipeClient, nil
}

func isBusy(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, windows.ERROR_PIPE_BUSY)
}

func (l *Listener) removeArtifact() {
	// The OS releases the pipe name once the last instance handle closes;
	// there is no filesystem artifact to remove.
}
