package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shoplist/internal/config"
	"shoplist/internal/listener"
	"shoplist/internal/logging"
	"shoplist/internal/pipeline"
	"shoplist/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	parser, err := pipeline.NewParserFromConfig(cfg)
	must(err)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(listener.NewService(db, cfg, parser, nil).Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
