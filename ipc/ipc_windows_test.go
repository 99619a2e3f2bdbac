//go:build windows

package ipc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func pipeName(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf(`\\.\pipe\ipc-test-%s-%d`, t.Name(), time.Now().UnixNano())
}

func TestPipeRoundTrip(t *testing.T) {
	as := require.New(t)
	path := pipeName(t)

	listener, err := New(path).Listen()
	as.NoError(err)
	defer listener.Close()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- func() error {
			conn, err := listener.Accept()
			if err != nil {
				return err
			}
			defer conn.Close()
			if conn.Origin() != OriginPipeServer {
				return fmt.Errorf("unexpected origin: %s", conn.Origin())
			}
			buf := make([]byte, 4)
			if _, err := io.ReadFull(conn, buf); err != nil {
				return err
			}
			if string(buf) != "ping" {
				return fmt.Errorf("unexpected request: %q", buf)
			}
			_, err = conn.Write([]byte("pong"))
			return err
		}()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	conn, err := Dial(ctx, path)
	as.NoError(err)
	defer conn.Close()
	as.Equal(OriginPipeClient, conn.Origin())

	_, err = conn.Write([]byte("ping"))
	as.NoError(err)

	buf := make([]byte, 4)
	_, err = io.ReadFull(conn, buf)
	as.NoError(err)
	as.Equal("pong", string(buf))

	as.NoError(<-serverErr)
}

func TestDialMissingPipeFailsImmediately(t *testing.T) {
	as := require.New(t)
	path := pipeName(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	start := time.Now()
	_, err := Dial(ctx, path)
	elapsed := time.Since(start)

	as.Error(err)
	as.True(IsEndpointNotFound(err))
	as.False(IsPipeBusy(err))
	as.Less(elapsed, time.Second, "a missing pipe must not be retried for the availability timeout")
}

func TestDialBusyTimesOutAfterAvailabilityWindow(t *testing.T) {
	as := require.New(t)
	path := pipeName(t)

	listener, err := New(path).Listen()
	as.NoError(err)
	defer listener.Close()

	// occupy the sole instance; the server never accepts, so no
	// replacement instance ever frees up
	firstCtx, firstCancel := context.WithTimeout(context.Background(), time.Second*10)
	defer firstCancel()
	first, err := Dial(firstCtx, path)
	as.NoError(err)
	defer first.Close()

	start := time.Now()
	_, err = Dial(context.Background(), path)
	elapsed := time.Since(start)

	as.Error(err)
	as.True(IsPipeBusy(err))
	as.ErrorIs(err, context.DeadlineExceeded)
	as.Greater(elapsed, time.Second*4, "a busy pipe must be retried for the full availability timeout")
	as.Less(elapsed, time.Second*8, "a busy pipe must not be retried past the availability timeout")
}

func TestPipeListenConflict(t *testing.T) {
	as := require.New(t)
	path := pipeName(t)

	listener, err := New(path).Listen()
	as.NoError(err)
	defer listener.Close()

	// the first instance reserves exclusive ownership of the name
	_, err = New(path).Listen()
	as.Error(err)
}

func TestPipeConcurrentClients(t *testing.T) {
	as := require.New(t)
	path := pipeName(t)

	listener, err := New(path).Listen()
	as.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	incoming := listener.Incoming(ctx)
	served := make(chan struct{})
	go func() {
		defer close(served)
		for in := range incoming {
			if in.Err != nil {
				return
			}
			conn := in.Conn
			go func() {
				defer conn.Close()
				io.Copy(conn, conn)
			}()
		}
	}()

	// concurrent dials race the replacement-instance window; the busy
	// retry inside Dial must absorb it without any client observing a
	// not-found error
	g, gctx := errgroup.WithContext(context.Background())
	for i := 0; i < 8; i++ {
		i := i
		g.Go(func() error {
			conn, err := Dial(gctx, path)
			if err != nil {
				return err
			}
			defer conn.Close()
			payload := bytes.Repeat([]byte{byte(i + 1)}, 128)
			if _, err := conn.Write(payload); err != nil {
				return err
			}
			buf := make([]byte, len(payload))
			if _, err := io.ReadFull(conn, buf); err != nil {
				return err
			}
			if !bytes.Equal(payload, buf) {
				return fmt.Errorf("echo mismatch for client %d", i)
			}
			return nil
		})
	}
	as.NoError(g.Wait())

	cancel()
	<-served
}
