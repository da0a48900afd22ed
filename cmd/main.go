package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/cafe-discovery/internal/auth"
	"github.com/ukydev/cafe-discovery/internal/config"
	"github.com/ukydev/cafe-discovery/internal/db"
	"github.com/ukydev/cafe-discovery/internal/events"
	"github.com/ukydev/cafe-discovery/internal/geo"
	"github.com/ukydev/cafe-discovery/internal/server"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("Server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ConfigureLogging(); err != nil {
		return err
	}
	log.Infof("Starting with %s", cfg)

	registry, err := geo.LoadRegistry(cfg.Geo.RegistryPath)
	if err != nil {
		return fmt.Errorf("load metro registry: %w", err)
	}
	log.WithField("metros", len(registry)).Info("Loaded metro registry")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := db.ConnectMongo(ctx, cfg.Mongo.URI)
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}()
	log.Info("Connected to MongoDB successfully")

	database := client.Database(cfg.Mongo.Database)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		return err
	}

	authService, err := auth.NewService(cfg.Auth)
	if err != nil {
		return err
	}

	publisher, err := events.New(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connect to MQTT broker: %w", err)
	}
	defer publisher.Close()

	router := server.NewRouter(server.Deps{
		Config:    cfg,
		Registry:  registry,
		Auth:      authService,
		Users:     &db.MongoUserCollection{Collection: database.Collection(db.UsersCollection)},
		Cafes:     &db.MongoCafeCollection{Collection: database.Collection(db.CafesCollection)},
		Likes:     &db.MongoLikeCollection{Collection: database.Collection(db.LikesCollection)},
		Publisher: publisher,
	})

	return serve(ctx, newHTTPServer(":"+cfg.HTTP.Port, router), shutdownTimeout)
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// serve runs srv until ctx is cancelled, then shuts it down within timeout.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
