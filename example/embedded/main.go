// Embedding example: the host application owns the main loop and drives the
// monitor one tick at a time, with a simulated battery and no broker.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/volttrace/volttrace/pkg/volttrace"
)

func main() {
	cfg := &volttrace.Config{
		Sample: volttrace.SampleConfig{
			Period:     time.Second,
			WindowSize: 60,
		},
		Storage: volttrace.StorageConfig{Dir: "./data/logs"},
		Reader: volttrace.ReaderConfig{
			Kind: "sim",
			Sim: volttrace.SimReaderConfig{
				BaseCurrent: 1.2,
				BaseVoltage: 12.6,
			},
		},
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	monitor, err := volttrace.FromConfig(cfg)
	if err != nil {
		log.Fatalf("assemble monitor: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for ctx.Err() == nil {
		monitor.Step()
		time.Sleep(5 * time.Millisecond)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := monitor.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
