package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"AidDesk/internal/cli/bootstrap"
	"AidDesk/internal/cli/commands"
	"AidDesk/internal/config"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Load unified config (env + flags)
	cfg := config.NewConfig()

	if cfg.Version {
		printVersion()
		return
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, sugar)
	cancel()
	_ = logger.Sync()
	if code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) int {
	app, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		log.Errorw("failed to start client", "error", err)
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warnw("failed to close client", "error", err)
		}
	}()

	app.Form.Mount(ctx)

	// без команды — интерактивный режим
	if flag.NArg() == 0 {
		fmt.Fprint(commands.Out, commands.FormatGlobalUsage())
		return commands.Loop(ctx, app, os.Stdin)
	}
	_ = app.Form.WaitTrust(ctx)
	return commands.Dispatch(ctx, app, flag.Args())
}

func printVersion() {
	fmt.Printf("AidDesk CLI\nVersion: %s\nBuild date: %s\n", version, buildDate)
}
