package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	analyzecmd "github.com/cadencelabs/driftwatch/internal/cmd/analyze"
)

func main() {
	cfg, err := analyzecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[ANALYZE] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := analyzecmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to analyze: %v", err)
	}
}
