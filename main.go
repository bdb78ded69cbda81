// main is the entry point for the donorlens CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/donorlens/cmd"
	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/internal/iocache"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd.SetRootContext(ctx)

	err := cmd.Execute()
	stop()
	iocache.CloseStores()
	if err != nil {
		contract.LogFatal("Error starting CLI", err)
	}
}
