package ipcutil

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Flaykky/mullvadvpn-app/cmd/internal/endpoint"
	"github.com/Flaykky/mullvadvpn-app/ipc"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func dialCommand() *cli.Command {
	return &cli.Command{
		Name:      "dial",
		Usage:     "connect to an IPC endpoint and bridge stdin/stdout to it",
		ArgsUsage: "endpoint",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "wait",
				Usage: "keep retrying the dial while the endpoint does not exist yet",
			},
			&cli.DurationFlag{
				Name:  "wait-interval",
				Value: ipc.DefaultRetryInterval,
				Usage: "interval between dial attempts with --wait",
			},
			&cli.UintFlag{
				Name:  "wait-attempts",
				Value: ipc.DefaultRetryAttempts,
				Usage: "number of dial attempts with --wait",
			},
		},
		Action: cmdDial,
	}
}

func cmdDial(ctx *cli.Context) error {
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

	var conn *ipc.Conn
	if ctx.Bool("wait") {
		dialer := &ipc.RetryDialer{
			Logger:   logger,
			Interval: ctx.Duration("wait-interval"),
			Attempts: ctx.Uint("wait-attempts"),
		}
		conn, err = dialer.Dial(ctx.Context, path)
	} else {
		conn, err = ipc.Dial(ctx.Context, path)
	}
	if err != nil {
		return fmt.Errorf("error dialing endpoint: %w", err)
	}
	defer conn.Close()

	logger.Info("Connected", zap.String("endpoint", path), zap.Stringer("origin", conn.Origin()))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		_, err := io.Copy(os.Stdout, conn)
		if err != nil {
			logger.Error("error piping to stdout", zap.Error(err))
		}
		sigs <- syscall.SIGTERM
	}()
	go func() {
		_, err := io.Copy(conn, os.Stdin)
		if err != nil {
			logger.Error("error piping from stdin", zap.Error(err))
			sigs <- syscall.SIGTERM
			return
		}
		// half close after stdin EOF so the peer observes end of input
		// while its replies still drain
		_ = conn.CloseWrite()
	}()

	<-sigs
	return nil
}
