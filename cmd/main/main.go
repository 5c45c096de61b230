package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"buildingclash/internal/api"
	"buildingclash/internal/app"
	"buildingclash/internal/config"
	"buildingclash/internal/service/clash"
	"buildingclash/internal/service/task"
	"buildingclash/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.LogFile)

	backends, err := app.OpenBackends(cfg)
	if err != nil {
		log.Fatalf("Failed to open backends: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service := clash.NewService(cfg.DetectorConcurrency)
	dispatcher := task.NewDispatcher(backends.Cache, backends.Queue, service, task.Options{
		PollInterval: cfg.PollInterval,
		PollTimeout:  cfg.PollTimeout,
	})

	workers := worker.StartAllWorkers(ctx, cfg.InProcessWorkers(), func() *worker.ClashWorker {
		return worker.NewClashWorker(backends.Queue, backends.Cache, service)
	})

	reportMemoryStats(ctx)

	runAPIServer(ctx, cfg, dispatcher)

	stop()
	workers.Wait()
	closeConnections(backends)
}

func setupLogging(path string) {
	if path == "" {
		return
	}
	// Set up logging to file and terminal
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	// The file stays open for the lifetime of the process

	// Use MultiWriter to output logs to both terminal and file
	multiWriter := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(multiWriter)
	gin.DefaultWriter = multiWriter
}

func runAPIServer(ctx context.Context, cfg config.Config, dispatcher *task.Dispatcher) {
	// Initialize Gin router
	r := gin.Default()

	info := map[string]string{
		"cacheDriver": cfg.CacheDriver,
		"queueDriver": cfg.QueueDriver,
	}
	api.SetupRouter(r, dispatcher, info)

	srv := &http.Server{Addr: cfg.Port, Handler: r}
	go func() {
		<-ctx.Done()
		log.Println("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown: %v", err)
		}
	}()

	log.Printf("Listening on %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server failed: %v", err)
	}
}

func reportMemoryStats(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				var m runtime.MemStats
				runtime.ReadMemStats(&m)
				log.Printf("Alloc = %v MiB, TotalAlloc = %v MiB, Sys = %v MiB, NumGC = %v",
					m.Alloc/1024/1024, m.TotalAlloc/1024/1024, m.Sys/1024/1024, m.NumGC)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func closeConnections(backends *app.Backends) {
	if err := backends.Close(); err != nil {
		log.Printf("Error closing connections: %v", err)
		return
	}
	log.Println("Connections closed successfully")
}
