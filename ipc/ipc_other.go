//go:build !(windows || unix)

package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime"
)

func (e *Endpoint) listen() (net.Listener, Origin, error) {
	return nil, 0, fmt.Errorf("ipc: listening on %s: %w", runtime.GOOS, errors.ErrUnsupported)
}

func dial(ctx context.Context, path string) (net.Conn, Origin, error) {
	return nil, 0, fmt.Errorf("ipc: dialing on %s: %w", runtime.GOOS, errors.ErrUnsupported)
}

func (l *Listener) removeArtifact() {}
