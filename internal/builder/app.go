package builder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/bms-rag/internal/api"
	queryapi "github.com/futig/bms-rag/internal/api/query"
	"github.com/futig/bms-rag/internal/pkg/formatter"
	"github.com/futig/bms-rag/internal/telegram"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// App is the HTTP API server
type App struct {
	server *http.Server
	logger *zap.Logger
}

// BuildServer ingests, builds the pipeline and mounts it on the HTTP router
func (b *Builder) BuildServer(ctx context.Context) (*App, error) {
	index, err := b.BuildIndex(ctx, false)
	if err != nil {
		return nil, err
	}

	ragUC, err := b.BuildRAG(ctx, index)
	if err != nil {
		return nil, err
	}

	queryHandler := queryapi.NewHandler(ragUC, index.Stats, b.cfg.ServerMaxBodyBytes)
	router := api.SetupRouter(api.RouterConfig{
		Query:          queryHandler,
		RequestTimeout: b.cfg.ServerRequestTimeout,
		Logger:         b.logger,
	})
	b.logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:        b.cfg.ServerAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// generation can take as long as the request timeout
		WriteTimeout: b.cfg.ServerRequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		server: server,
		logger: b.logger,
	}, nil
}

// BuildTelegramBot ingests, builds the pipeline and wires it to the bot
func (b *Builder) BuildTelegramBot(ctx context.Context) (telegram.Bot, error) {
	if err := b.cfg.TelegramCfg.ValidateTelegram(); err != nil {
		return nil, err
	}

	index, err := b.BuildIndex(ctx, false)
	if err != nil {
		return nil, err
	}

	ragUC, err := b.BuildRAG(ctx, index)
	if err != nil {
		return nil, err
	}

	bot, err := telegram.NewBot(&b.cfg.TelegramCfg, ragUC, formatter.NewJSONFormatter(), b.logger)
	if err != nil {
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	return bot, nil
}

// Run serves until ctx is done, then shuts down gracefully
func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		a.logger.Error("server error", zap.Error(err))
		return err
	case <-ctx.Done():
		a.logger.Info("received shutdown signal")
	}

	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info("shutting down server gracefully")

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	a.logger.Info("application stopped gracefully")
	return nil
}
