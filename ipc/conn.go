package ipc

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// Origin identifies the concrete transport a Conn wraps.
type Origin int

const (
	// OriginSocket is a Unix domain socket stream, on either end.
	OriginSocket Origin = iota
	// OriginPipeClient is the dialing end of a Windows named pipe.
	OriginPipeClient
	// OriginPipeServer is the accepting end of a Windows named pipe.
	OriginPipeServer
)

func (o Origin) String() string {
	switch o {
	case OriginSocket:
		return "socket"
	case OriginPipeClient:
		return "pipe-client"
	case OriginPipeServer:
		return "pipe-server"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

type closeWriter interface {
	CloseWrite() error
}

type flusher interface {
	Flush() error
}

// Conn is one established duplex byte stream, tagged with the transport it
// came from. All operations dispatch to the wrapped handle; errors from the
// handle propagate unchanged. A Conn is exclusively owned by whoever
// received it from a Listener or Dial.
type Conn struct {
	raw    net.Conn
	origin Origin
}

var _ net.Conn = (*Conn)(nil)

// Origin returns the transport variant this connection came from.
func (c *Conn) Origin() Origin {
	return c.origin
}

func (c *Conn) Read(b []byte) (int, error) {
	return c.raw.Read(b)
}

func (c *Conn) Write(b []byte) (int, error) {
	return c.raw.Write(b)
}

// Flush blocks until buffered bytes, if any, are handed to the OS. Neither
// underlying transport buffers in userspace, so this usually succeeds
// without doing anything.
func (c *Conn) Flush() error {
	if f, ok := c.raw.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// CloseWrite half-closes the connection: the peer observes EOF while the
// read direction stays usable. Transports without half-close support return
// an error wrapping errors.ErrUnsupported.
func (c *Conn) CloseWrite() error {
	switch c.origin {
	case OriginSocket:
		if uc, ok := c.raw.(*net.UnixConn); ok {
			return uc.CloseWrite()
		}
	case OriginPipeClient, OriginPipeServer:
		if cw, ok := c.raw.(closeWriter); ok {
			return cw.CloseWrite()
		}
	}
	return fmt.Errorf("ipc: %s half close: %w", c.origin, errors.ErrUnsupported)
}

func (c *Conn) Close() error {
	return c.raw.Close()
}

func (c *Conn) LocalAddr() net.Addr {
	return c.raw.LocalAddr()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

func (c *Conn) SetDeadline(t time.Time) error {
	return c.raw.SetDeadline(t)
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.raw.SetReadDeadline(t)
}

func (c *Conn) SetWriteDeadline(t time.Time) error {
	return c.raw.SetWriteDeadline(t)
}
