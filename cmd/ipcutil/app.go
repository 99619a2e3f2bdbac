package ipcutil

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Build = "head"
)

var App = cli.App{
	Name:            "ipcutil",
	Usage:           fmt.Sprintf("build for %s on %s", runtime.GOARCH, runtime.GOOS),
	Version:         Build,
	HideHelpCommand: true,
	Description:     "serve and exercise local IPC endpoints (unix domain sockets and named pipes)",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose",
			Value: false,
			Usage: "enable verbose logging",
		},
	},
	Commands: []*cli.Command{
		listenCommand(),
		dialCommand(),
	},
	Before: ConfigLogger,
}

func ConfigLogger(ctx *cli.Context) error {
	var config zap.Config
	if ctx.Bool("verbose") {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}
	// Log to stderr so the data plane can own stdout
	config.OutputPaths = []string{"stderr"}
	logger, err := config.Build()
	if err != nil {
		return err
	}
	ctx.App.Metadata["logger"] = logger
	return nil
}
