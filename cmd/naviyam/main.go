// Command naviyam is the children's restaurant recommendation assistant.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, os.Getenv(configDirEnv))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli.SetVersion(version)
	cli.SetServices(a.services)

	err = cli.Execute(ctx)
	a.Close()
	if err != nil {
		os.Exit(1)
	}
}
