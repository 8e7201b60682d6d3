package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bnema/vidpipe/config"
	"github.com/bnema/vidpipe/internal/adapter/engine/ffmpeg"
	HTTPAdapter "github.com/bnema/vidpipe/internal/adapter/http"
	sqlitestore "github.com/bnema/vidpipe/internal/adapter/storage/sqlite"
	"github.com/bnema/vidpipe/internal/command"
	"github.com/bnema/vidpipe/internal/infrastructure/logger"
	"github.com/bnema/vidpipe/internal/service"
	"github.com/bnema/vidpipe/internal/workspace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error.Printf("failed to load config: %v", err)
		os.Exit(1)
	}

	logger.Info.Printf("starting vidpipe on port %d, data=%s, ffmpeg=%s", cfg.Port, cfg.DataDir, cfg.FFmpegPath)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Error.Printf("failed to create data directory: %v", err)
		os.Exit(1)
	}

	store, err := sqlitestore.NewStore(cfg.DataDir)
	if err != nil {
		logger.Error.Printf("failed to create store: %v", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	authSvc, err := service.NewAuthService(cfg.APIToken, bcrypt.DefaultCost)
	if err != nil {
		logger.Error.Printf("invalid API_TOKEN: %v", err)
		os.Exit(1)
	}

	jobQueue := sqlitestore.NewJobQueue(store)
	eventBus := service.NewEventBus()
	ws := workspace.NewManager(cfg.DataDir, cfg.CacheDir)
	handle := service.NewEngineHandle(ffmpeg.NewEngine(cfg.FFmpegPath))
	transcoder := service.NewTranscoder(handle, ws, command.NewBuilder(cfg.Threads))

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	worker := service.NewWorker(jobQueue, store, transcoder, eventBus)
	workerDone := worker.Start(workerCtx)

	jobSvc := service.NewJobService(jobQueue, store, worker)
	server := HTTPAdapter.NewServer(authSvc, jobSvc, eventBus)

	// Periodic purge of abandoned workspaces
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := ws.PurgeOlderThan(cfg.WorkspaceRetention, time.Now())
				if err != nil {
					logger.Error.Printf("workspace purge failed: %v", err)
					continue
				}
				if n > 0 {
					logger.Info.Printf("purged %d stale workspaces", n)
				}
			case <-workerCtx.Done():
				return
			}
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		// No WriteTimeout: event streams stay open for the length of a job.
		IdleTimeout: 120 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info.Printf("received %s, shutting down", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("http shutdown error: %v", err)
		}

		// Interrupts the running job; it is requeued on the next start.
		workerCancel()
		select {
		case <-workerDone:
		case <-shutdownCtx.Done():
			logger.Warn.Printf("worker did not stop in time")
		}

		logger.Info.Printf("shutdown complete")
	}()

	logger.Info.Printf("server listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error.Printf("server failed: %v", err)
		os.Exit(1)
	}
	<-shutdownDone
}
