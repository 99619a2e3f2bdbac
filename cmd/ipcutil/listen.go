package ipcutil

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/url"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Flaykky/mullvadvpn-app/cmd/internal/endpoint"
	"github.com/Flaykky/mullvadvpn-app/ipc"
	"github.com/Flaykky/mullvadvpn-app/util"

	pool "github.com/libp2p/go-buffer-pool"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const echoBufferSize = 4096

func listenCommand() *cli.Command {
	return &cli.Command{
		Name:      "listen",
		Usage:     "accept connections at an IPC endpoint",
		ArgsUsage: "endpoint",
		Description: `Creates the endpoint and serves every incoming connection until interrupted.
Connections are echoed back by default, or relayed to a backend with --forward.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "forward",
				Usage: "relay connections to this backend instead of echoing, e.g. tcp://127.0.0.1:9000 or unix:///run/app.sock",
			},
			&cli.StringFlag{
				Name:  "socket-mode",
				Value: "666",
				Usage: "octal permission bits applied to the socket path after bind (unix only)",
			},
		},
		Action: cmdListen,
	}
}

func cmdListen(ctx *cli.Context) error {
	logger, ok := ctx.App.Metadata["logger"].(*zap.Logger)
	if !ok || logger == nil {
		return fmt.Errorf("unable to obtain logger from app context")
	}

	path := ctx.Args().First()
	if path == "" {
		return fmt.Errorf("missing endpoint in argument")
	}
	path, err := endpoint.Normalize(path)
	if err != nil {
		return fmt.Errorf("error validating endpoint: %w", err)
	}

	mode, err := strconv.ParseUint(ctx.String("socket-mode"), 8, 32)
	if err != nil {
		return fmt.Errorf("error parsing socket-mode: %w", err)
	}

	var forward dialFunc
	if f := ctx.String("forward"); f != "" {
		forward, err = forwardDialer(f)
		if err != nil {
			return fmt.Errorf("error parsing forward target: %w", err)
		}
	}

	listener, err := ipc.New(path,
		ipc.WithLogger(logger),
		ipc.WithSocketMode(fs.FileMode(mode)),
	).Listen()
	if err != nil {
		return fmt.Errorf("error creating endpoint listener: %w", err)
	}
	defer listener.Close()

	sigCtx, cancel := signal.NotifyContext(ctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Serving endpoint", zap.String("endpoint", path))

	for in := range listener.Incoming(sigCtx) {
		if in.Err != nil {
			return fmt.Errorf("error accepting connection: %w", in.Err)
		}
		conn := in.Conn
		go func() {
			defer conn.Close()
			if forward != nil {
				relayTo(sigCtx, logger, conn, ctx.String("forward"), forward)
			} else {
				echo(logger, conn)
			}
		}()
	}

	return nil
}

func echo(logger *zap.Logger, conn *ipc.Conn) {
	buf := pool.Get(echoBufferSize)
	defer pool.Put(buf)
	if _, err := io.CopyBuffer(conn, conn, buf); err != nil {
		logger.Error("error echoing connection", zap.Error(err))
	}
}

type dialFunc func(context.Context) (net.Conn, error)

// forwardDialer resolves a forward target into a dialer. Pipe-namespace
// names are not URLs and are matched before any URL parsing.
func forwardDialer(target string) (dialFunc, error) {
	if endpoint.IsPipeName(target) {
		return func(ctx context.Context) (net.Conn, error) {
			return ipc.Dial(ctx, target)
		}, nil
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "tcp":
		dialer := &net.Dialer{
			Timeout: time.Second * 3,
		}
		return func(ctx context.Context) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp", u.Host)
		}, nil
	case "unix":
		return func(ctx context.Context) (net.Conn, error) {
			return ipc.Dial(ctx, u.Path)
		}, nil
	default:
		return nil, fmt.Errorf("unknown scheme for forward target: %s", target)
	}
}

func relayTo(ctx context.Context, logger *zap.Logger, conn *ipc.Conn, target string, dial dialFunc) {
	local, err := dial(ctx)
	if err != nil {
		logger.Error("error dialing forward target", zap.String("target", target), zap.Error(err))
		return
	}
	if err := util.Relay(conn, local); err != nil {
		logger.Error("error relaying connection", zap.String("target", target), zap.Error(err))
	}
}
