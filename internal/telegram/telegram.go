package telegram

import (
	"context"

	"github.com/futig/bms-rag/internal/config"
	"github.com/futig/bms-rag/internal/telegram/bot"
	"github.com/futig/bms-rag/internal/telegram/handlers"
	"github.com/futig/bms-rag/internal/telegram/render"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot authorizes the token and wires the query, history and help handlers
func NewBot(
	cfg *config.TelegramConfig,
	ragUC handlers.RagUsecase,
	formatter handlers.Formatter,
	logger *zap.Logger,
) (Bot, error) {
	api, err := bot.NewAPI(cfg.BotToken, logger)
	if err != nil {
		return nil, err
	}

	return newBot(cfg, api, ragUC, formatter, logger), nil
}

func newBot(
	cfg *config.TelegramConfig,
	api bot.API,
	ragUC handlers.RagUsecase,
	formatter handlers.Formatter,
	logger *zap.Logger,
) *bot.Bot {
	b := bot.New(cfg, api, handlers.NewQueryHandler(api, ragUC, formatter, logger), logger)

	b.RegisterCommand("start", handlers.NewStaticHandler(api, render.MsgWelcome, logger))
	b.RegisterCommand("help", handlers.NewStaticHandler(api, render.MsgHelp, logger))
	b.RegisterCommand("history", handlers.NewHistoryHandler(api, ragUC, logger))

	logger.Info("telegram bot initialized successfully")
	return b
}
