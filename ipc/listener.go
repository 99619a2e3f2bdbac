package ipc

import (
	"context"
	"errors"
	"net"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Listener accepts connections at one bound endpoint. At most one consumer
// may accept at a time; connections are yielded in acceptance order.
type Listener struct {
	path   string
	ln     net.Listener
	origin Origin
	logger *zap.Logger
	closed atomic.Bool
}

// Incoming is one element of the stream produced by Listener.Incoming:
// either an accepted connection or the error that terminated the stream.
type Incoming struct {
	Conn *Conn
	Err  error
}

// Accept blocks until a client connects and returns the connection. Accept
// errors are not retried internally; after an error the listener should be
// treated as failed.
func (l *Listener) Accept() (*Conn, error) {
	raw, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	l.logger.Debug("ipc: accepted connection",
		zap.String("endpoint", l.path),
		zap.Stringer("origin", l.origin),
	)
	return &Conn{raw: raw, origin: l.origin}, nil
}

// Addr returns the listener's bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Incoming converts the listener into a stream of accepted connections.
// The stream never ends on its own: it terminates by sending the accept
// error that broke it and closing the channel, or by closing the channel
// once ctx is done. Calling Incoming hands ownership of the listener to
// the stream; when ctx ends the listener is closed, which on unix-like
// systems also removes the socket path.
func (l *Listener) Incoming(ctx context.Context) <-chan Incoming {
	ch := make(chan Incoming)
	stop := context.AfterFunc(ctx, func() {
		_ = l.Close()
	})
	go func() {
		defer close(ch)
		defer stop()
		for {
			conn, err := l.Accept()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
					return
				}
				// the stream is dead; release the endpoint now instead of
				// waiting for ctx to end
				_ = l.Close()
				select {
				case ch <- Incoming{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case ch <- Incoming{Conn: conn}:
			case <-ctx.Done():
				conn.Close()
				return
			}
		}
	}()
	return ch
}

// Close shuts the listener down and, on unix-like systems, removes the
// bound socket path. Removal is best effort: a failure is logged, never
// returned. Close is idempotent.
func (l *Listener) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := l.ln.Close()
	l.removeArtifact()
	return err
}
