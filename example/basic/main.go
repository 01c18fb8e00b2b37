package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/volttrace/volttrace"
)

func main() {
	monitor, err := volttrace.Open("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := monitor.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("monitor exited: %v", err)
	}
}
