package handlers

import (
	"context"

	"github.com/futig/bms-rag/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// RagUsecase is the query pipeline as seen by the bot
type RagUsecase interface {
	Ask(ctx context.Context, query string) (*entity.Answer, error)
	History(ctx context.Context, limit int) ([]*entity.HistoryEntry, error)
}

// Formatter renders the document attached to an answer
type Formatter interface {
	Format(answer *entity.Answer) ([]byte, error)
	FileExtension() string
}

// BotAPI is the subset of *tgbotapi.BotAPI the handlers call
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}
