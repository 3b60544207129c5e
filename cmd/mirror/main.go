// Package main starts the storefront mirror daemon.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	mirrorcmd "github.com/laviddichterman/wario-ux-shared/internal/cmd/mirror"
	"github.com/laviddichterman/wario-ux-shared/internal/platform/config"
)

func main() {
	cfg, err := mirrorcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[MIRROR] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mirrorcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("mirror: %v", err)
	}
}
