package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"buildingclash/internal/app"
	"buildingclash/internal/config"
	"buildingclash/internal/service/clash"
	"buildingclash/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	}

	if cfg.QueueDriver == config.DriverMemory {
		log.Fatalf("QUEUE_DRIVER=%s cannot be shared with a separate worker process", cfg.QueueDriver)
	}

	backends, err := app.OpenBackends(cfg)
	if err != nil {
		log.Fatalf("Failed to open backends: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service := clash.NewService(cfg.DetectorConcurrency)
	workers := worker.StartAllWorkers(ctx, cfg.WorkerConcurrency, func() *worker.ClashWorker {
		return worker.NewClashWorker(backends.Queue, backends.Cache, service)
	})

	<-ctx.Done()
	log.Println("Shutdown signal received, waiting for workers...")
	workers.Wait()

	if err := backends.Close(); err != nil {
		log.Printf("Error closing connections: %v", err)
	}
	log.Println("Worker process stopped")
}
