//go:build unix

package ipcutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Flaykky/mullvadvpn-app/ipc"

	"github.com/stretchr/testify/require"
)

func TestForwardDialerDialsUnixTarget(t *testing.T) {
	as := require.New(t)
	path := filepath.Join(t.TempDir(), "backend.sock")

	listener, err := ipc.New(path).Listen()
	as.NoError(err)
	defer listener.Close()

	accepted := make(chan error, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			accepted <- err
			return
		}
		accepted <- conn.Close()
	}()

	dial, err := forwardDialer("unix://" + path)
	as.NoError(err)

	conn, err := dial(context.Background())
	as.NoError(err)
	as.NoError(conn.Close())
	as.NoError(<-accepted)
}
