// Command vergen captures build metadata (build time, go command settings,
// toolchain, host and git state) for embedding into Go programs.
//
//	//go:generate go run github.com/milan604/vergen/cmd/vergen emit --format go --package main --output vergen_gen.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/milan604/vergen/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
