package ipc

import (
	"errors"
	"io/fs"
)

var (
	// ErrEndpointConsumed is returned by Listen when the Endpoint has
	// already produced a listener.
	ErrEndpointConsumed = errors.New("ipc: endpoint already consumed by a listener")

	// ErrPipeBusy is returned by Dial when every instance of a named pipe
	// stayed occupied for the full availability timeout.
	ErrPipeBusy = errors.New("ipc: named pipe busy")
)

// IsEndpointNotFound reports whether err indicates that no endpoint exists
// at the dialed path, as opposed to one that exists but cannot currently
// accept.
func IsEndpointNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// IsPipeBusy reports whether err is the busy/timeout condition from dialing
// a named pipe with no free instance.
func IsPipeBusy(err error) bool {
	return errors.Is(err, ErrPipeBusy)
}
