package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/EgorLis/hashdrop/internal/app"
)

// @title        hashdrop API
// @version      1.0
// @description  Content-addressed presigned transfer broker for S3-compatible storage.
// @BasePath     /
func main() {
	var opts app.Options
	pflag.StringVar(&opts.EnvFile, "env-file", ".env", "path to a .env file (ignored if missing)")
	pflag.StringVar(&opts.Addr, "addr", "", "listen address, overrides APP_PORT")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, opts)
	if err != nil {
		log.Fatalf("build: %v", err)
	}
	if err := a.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
}
