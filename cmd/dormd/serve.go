package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/spf13/cobra"

	"dorm-reservation-backend/config"
	"dorm-reservation-backend/internal/api"
	"dorm-reservation-backend/internal/db"
	"dorm-reservation-backend/internal/notification"
	"dorm-reservation-backend/internal/remote"
	"dorm-reservation-backend/internal/reservation"
	"dorm-reservation-backend/internal/rooms"
	"dorm-reservation-backend/internal/store"
	"dorm-reservation-backend/internal/students"
	"dorm-reservation-backend/internal/sweeper"
)

// runFunc builds a service's HTTP handler. Background work must stop when ctx is done.
type runFunc func(ctx context.Context, cfg *config.Config, logger *log.Logger) (http.Handler, error)

func serviceCmd(name, short string, run runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(name, run)
		},
	}
}

func serve(name string, run runFunc) error {
	logger := log.New(os.Stdout, name+" ", log.LstdFlags)

	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Printf("configuration loaded successfully from %s", path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler, err := run(ctx, cfg, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server Shutdown: %w", err)
	}

	logger.Println("Server gracefully stopped")
	return nil
}

func runRooms(_ context.Context, cfg *config.Config, logger *log.Logger) (http.Handler, error) {
	gormDB, err := db.Init(&cfg.Database, rooms.Models()...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Println("database initialized successfully")
	return rooms.NewRouter(rooms.NewRegistry(gormDB), cfg.Server), nil
}

func runStudents(_ context.Context, cfg *config.Config, logger *log.Logger) (http.Handler, error) {
	gormDB, err := db.Init(&cfg.Database, students.Models()...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Println("database initialized successfully")
	return students.NewRouter(students.NewRegistry(gormDB), cfg.Server), nil
}

func runReservations(ctx context.Context, cfg *config.Config, logger *log.Logger) (http.Handler, error) {
	gormDB, err := db.Init(&cfg.Database, store.Models()...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Println("database initialized successfully")

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	opts := []reservation.Option{reservation.WithLocation(cfg.Reservations.Location)}

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appStore, webpushOptions)
		pool.Start(ctx)
		opts = append(opts, reservation.WithNotifier(pool))
		logger.Printf("notification worker pool started with %d workers", cfg.WorkerPool.Size)
	} else {
		logger.Println("VAPID keys are not configured; push notifications are disabled")
	}

	svc := reservation.NewService(
		appStore,
		remote.NewRoomClient(cfg.Remote.Rooms),
		remote.NewStudentClient(cfg.Remote.Students),
		opts...,
	)
	logger.Printf("room registry at %s, student registry at %s", cfg.Remote.Rooms.BaseURL, cfg.Remote.Students.BaseURL)

	go sweeper.NewService(cfg.Sweeper, svc).Run(ctx)

	return api.NewRouter(svc, appStore, webpushOptions, cfg.Server), nil
}
