// Package ipc provides a bidirectional local IPC byte stream over Unix
// domain sockets on unix-like systems and named pipes on Windows, behind a
// single endpoint/listener/dialer surface.
package ipc

import (
	"context"
	"io/fs"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// DefaultSocketMode is applied to the bound socket path on unix-like
// systems unless overridden with WithSocketMode. It grants read-write to
// owner, group and others so non-privileged local processes can connect.
const DefaultSocketMode fs.FileMode = 0o666

// Endpoint is a named local address at which a listener can accept
// connections. An Endpoint is single use: it is consumed by Listen.
type Endpoint struct {
	path       string
	logger     *zap.Logger
	socketMode fs.FileMode
	consumed   atomic.Bool
}

type Option func(*Endpoint)

// WithLogger sets the logger used for accept and cleanup diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Endpoint) {
		e.logger = logger
	}
}

// WithSocketMode overrides the permission bits applied to the socket path
// after bind. Ignored on platforms without filesystem-backed endpoints.
func WithSocketMode(mode fs.FileMode) Option {
	return func(e *Endpoint) {
		e.socketMode = mode
	}
}

// New returns an Endpoint at the given path. On unix-like systems the path
// is a filesystem path whose parent directory must exist; on Windows it is
// a name in the local pipe namespace (`\\.\pipe\...`).
func New(path string, opts ...Option) *Endpoint {
	e := &Endpoint{
		path:       path,
		logger:     zap.NewNop(),
		socketMode: DefaultSocketMode,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Path returns the endpoint's path or pipe name.
func (e *Endpoint) Path() string {
	return e.path
}

// Listen binds the endpoint and returns a Listener accepting connections at
// it. Listen consumes the Endpoint: a second call fails with
// ErrEndpointConsumed regardless of whether the first listener is still
// open. Binding a path already owned by another listener surfaces the OS
// error unchanged.
func (e *Endpoint) Listen() (*Listener, error) {
	if !e.consumed.CompareAndSwap(false, true) {
		return nil, ErrEndpointConsumed
	}
	ln, origin, err := e.listen()
	if err != nil {
		return nil, err
	}
	e.logger.Debug("ipc: listening",
		zap.String("endpoint", e.path),
		zap.Stringer("origin", origin),
	)
	return &Listener{
		path:   e.path,
		ln:     ln,
		origin: origin,
		logger: e.logger,
	}, nil
}

// Dial establishes one connection to the endpoint at path.
//
// On unix-like systems this is a single connect attempt and every failure
// is returned immediately. On Windows the only transient condition is
// "pipe busy" (the name exists but every instance is occupied), which is
// retried at a fixed interval until the availability timeout elapses; all
// other failures, including a missing endpoint, return immediately.
func Dial(ctx context.Context, path string) (*Conn, error) {
	raw, origin, err := dial(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Conn{raw: raw, origin: origin}, nil
}
