//go:build unix

package ipc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"

	"go.uber.org/zap"
)

func (e *Endpoint) listen() (net.Listener, Origin, error) {
	ln, err := net.Listen("unix", e.path)
	if err != nil {
		return nil, 0, err
	}
	// Loosen the socket permissions after bind so local non-privileged
	// processes can connect. The mode is a policy point, not an ACL.
	if err := os.Chmod(e.path, e.socketMode); err != nil {
		ln.Close()
		return nil, 0, fmt.Errorf("ipc: setting socket permissions: %w", err)
	}
	return ln, OriginSocket, nil
}

func dial(ctx context.Context, path string) (net.Conn, Origin, error) {
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, 0, err
	}
	return conn, OriginSocket, nil
}

func (l *Listener) removeArtifact() {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		l.logger.Debug("ipc: removing socket path",
			zap.String("endpoint", l.path),
			zap.Error(err),
		)
	}
}
