package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/futig/bms-rag/internal/config"
	"github.com/futig/bms-rag/internal/pkg/logger"
	"github.com/futig/bms-rag/internal/telegram/handlers"
	"github.com/futig/bms-rag/internal/telegram/middleware"
	"github.com/futig/bms-rag/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// API is the subset of *tgbotapi.BotAPI the bot uses
type API interface {
	handlers.BotAPI
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot represents the Telegram bot
type Bot struct {
	api         API
	cfg         *config.TelegramConfig
	commands    map[string]handlers.Handler
	text        handlers.Handler
	sender      *handlers.MessageSender
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	updatesChan tgbotapi.UpdatesChannel
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewAPI authorizes the token against Telegram
func NewAPI(token string, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)
	return api, nil
}

// New creates a bot that routes non-command text to text
func New(cfg *config.TelegramConfig, api API, text handlers.Handler, logger *zap.Logger) *Bot {
	return &Bot{
		api:         api,
		cfg:         cfg,
		commands:    make(map[string]handlers.Handler),
		text:        text,
		sender:      handlers.NewMessageSender(api, logger),
		logger:      logger,
		loggingMW:   middleware.NewLoggingMiddleware(logger),
		recoveryMW:  middleware.NewRecoveryMiddleware(logger, api),
		rateLimitMW: middleware.NewRateLimiterMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst, logger, api),
		stopChan:    make(chan struct{}),
	}
}

// RegisterCommand routes /command to handler
func (b *Bot) RegisterCommand(command string, handler handlers.Handler) {
	b.commands[command] = handler
	b.logger.Info("command registered", zap.String("command", command))
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	b.updatesChan = b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	b.stopOnce.Do(func() {
		close(b.stopChan)
		b.api.StopReceivingUpdates()
		b.rateLimitMW.Close()
	})

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				ctxzap.Info(ctx, "updates channel closed")
				return
			}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(ctx, u)
			}(update)
		}
	}
}

// handleUpdateWithMiddleware runs rate limit, then logging, then recovery
func (b *Bot) handleUpdateWithMiddleware(ctx context.Context, update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(ctx, u3)
			})
		})
	})
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.Chat == nil {
		return
	}

	ctx = logger.AddFields(ctx,
		zap.Int64("chat_id", message.Chat.ID),
		zap.Int("update_id", update.UpdateID),
	)
	if message.From != nil {
		ctx = logger.AddFields(ctx, zap.Int64("user_id", message.From.ID))
	}

	msg := &handlers.Message{
		ChatID:    message.Chat.ID,
		MessageID: message.MessageID,
		Text:      message.Text,
	}
	if message.From != nil {
		msg.UserID = message.From.ID
	}

	handler, action := b.route(message)
	if handler == nil {
		b.sendError(ctx, msg.ChatID, render.MsgUnknownCmd)
		return
	}
	ctx = logger.WithAction(ctx, action)

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "handler error", zap.Error(err))
		b.sendError(ctx, msg.ChatID, render.ClassifyError(err))
	}
}

// route picks the command handler, or the text handler for plain messages
func (b *Bot) route(message *tgbotapi.Message) (handlers.Handler, string) {
	if !message.IsCommand() {
		return b.text, "query"
	}

	command := message.Command()
	return b.commands[command], command
}

func (b *Bot) sendError(ctx context.Context, chatID int64, text string) {
	if err := b.sender.Send(chatID, text, 0); err != nil {
		ctxzap.Error(ctx, "failed to send error message", zap.Error(err))
	}
}
