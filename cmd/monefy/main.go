package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/faheemho18/monefy-pwa-clone/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := commands.NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
