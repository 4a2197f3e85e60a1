package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/serplantas/serplantas/internal/ai"
	httpapi "github.com/serplantas/serplantas/internal/http"
	"github.com/serplantas/serplantas/internal/service"
	"github.com/serplantas/serplantas/internal/store"
	"github.com/serplantas/serplantas/internal/store/drivers/sqlite"
	"github.com/serplantas/serplantas/pkg/cryptox"
	"github.com/serplantas/serplantas/pkg/jwtx"
	"github.com/serplantas/serplantas/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	tokens *jwtx.HS256

	authService      *service.AuthService
	twoFactorService *service.TwoFactorService
	aiService        *service.AIService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "serplantas",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	tokens, err := jwtx.NewHS256([]byte(cfg.TokenSecret), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.tokens = tokens

	app.initServices()
	app.initHTTP()

	return app, nil
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	app.db = db
	return nil
}

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:      app.db,
		Signer:     app.tokens,
		Verifier:   app.tokens,
		Issuer:     app.cfg.Issuer,
		HashParams: cryptox.DefaultParams,
	}
	app.twoFactorService = &service.TwoFactorService{
		Store:  app.db,
		Issuer: app.cfg.Issuer,
	}

	var geminiOpts []ai.GeminiOption
	if app.cfg.GeminiBaseURL != "" {
		geminiOpts = append(geminiOpts, ai.WithBaseURL(app.cfg.GeminiBaseURL))
	}
	app.aiService = &service.AIService{
		Store: app.db,
		Model: ai.NewGeminiClient(app.cfg.GeminiAPIKey, geminiOpts...),
	}
}

func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(app.tokens, BuildVersion, app.db, app.logger)
	app.router.AuthService = app.authService
	app.router.TwoFactorService = app.twoFactorService
	app.router.AIService = app.aiService
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("serplantas starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down serplantas...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("serplantas stopped")
	return nil
}
