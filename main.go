package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Flaykky/mullvadvpn-app/cmd/ipcutil"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ipcutil.App.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
