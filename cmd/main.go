package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"collab_notes/internal/handlers"
	"collab_notes/internal/hub"
	"collab_notes/internal/logger"
	"collab_notes/internal/repository"
	"collab_notes/internal/server"
	"collab_notes/internal/service"

	"github.com/spf13/viper"
)

// insecureDevSecret is the signing-key fallback when no configuration is
// present. It must never reach production.
const insecureDevSecret = "dev-secret-change-me"

func main() {
	// load config.yml (optional; defaults apply when absent)
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(viper.GetString("log.level"))

	// open the ephemeral note/user store
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	broadcastHub := hub.NewHub(log)
	services := service.NewService(repos, broadcastHub, signingKey(log))
	apiHandler := handlers.NewHandler(services, broadcastHub, log)
	apiHandler.SetStrictWSAuth(viper.GetString("ws.auth_policy") == "strict")

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, log)
}

func loadConfig() error {
	viper.SetDefault("port", "8080")
	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("db.path", ":memory:")
	viper.SetDefault("ws.auth_policy", "permissive")

	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env apply.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// signingKey resolves the token signing key from configuration, falling back
// to an insecure development default.
func signingKey(log *logger.Logger) string {
	if key := viper.GetString("jwt.secret"); key != "" {
		return key
	}
	log.Warnw("jwt.secret not configured; using insecure development default, unsuitable for production")
	return insecureDevSecret
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		dbPath = ":memory:"
	}
	if dbPath != ":memory:" {
		log.Warnw("db.path points at a file; note state is meant to be ephemeral", "path", dbPath)
	}
	return repository.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
