package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"ski-search/cmd/tools/commands"
	"ski-search/internal/config"
	"ski-search/internal/observability"
)

func main() {
	cfg := config.Load()
	// stdout carries command output
	log.Logger = observability.NewLoggerTo(os.Stderr, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.ExecuteContext(ctx)
}
