package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fusionswap/internal/app"
	"fusionswap/pkg/units"
)

const sweepInterval = 30 * time.Second

func main() {
	boot := app.NewBootstrap()
	if err := boot.Initialize(); err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := boot.Start(ctx); err != nil {
		log.Fatalf("relay start failed: %v", err)
	}

	// The host scheduler drives expiration; standalone runs tick it here.
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				boot.Engine.ExpireSweep(units.Timestamp(t.Unix()))
			}
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	cancel()
	boot.Shutdown()
}
