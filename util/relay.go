package util

import (
	"errors"
	"io"
	"net"
	"sync"

	pool "github.com/libp2p/go-buffer-pool"
	"go.uber.org/multierr"
)

const relayBufferSize = 4096

// Relay copies bytes between a and b in both directions until either side
// fails or reaches EOF, then closes both ends. It returns whatever stopped
// the copies, excluding the teardown errors Relay causes by closing the
// other direction.
func Relay(a, b io.ReadWriteCloser) error {
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)

	go relay(&wg, a, b, &errs[0])
	go relay(&wg, b, a, &errs[1])

	wg.Wait()
	return multierr.Append(errs[0], errs[1])
}

func relay(wg *sync.WaitGroup, dst, src io.ReadWriteCloser, out *error) {
	defer wg.Done()

	buf := pool.Get(relayBufferSize)
	defer pool.Put(buf)

	_, err := io.CopyBuffer(dst, src, buf)
	if err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
		*out = err
	}

	dst.Close()
	src.Close()
}
