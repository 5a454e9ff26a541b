package handlers

import (
	"context"
	"fmt"

	"github.com/futig/bms-rag/internal/telegram/render"
	"go.uber.org/zap"
)

// historyLimit is how many past queries /history shows
const historyLimit = 10

// StaticHandler replies with fixed text
type StaticHandler struct {
	sender *MessageSender
	text   string
}

func NewStaticHandler(api BotAPI, text string, logger *zap.Logger) *StaticHandler {
	return &StaticHandler{
		sender: NewMessageSender(api, logger),
		text:   text,
	}
}

func (h *StaticHandler) Handle(_ context.Context, msg *Message) error {
	return h.sender.Send(msg.ChatID, h.text, 0)
}

// HistoryHandler lists the latest answered queries
type HistoryHandler struct {
	sender  *MessageSender
	usecase RagUsecase
}

func NewHistoryHandler(api BotAPI, usecase RagUsecase, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		sender:  NewMessageSender(api, logger),
		usecase: usecase,
	}
}

func (h *HistoryHandler) Handle(ctx context.Context, msg *Message) error {
	entries, err := h.usecase.History(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	return h.sender.Send(msg.ChatID, render.RenderHistory(entries), 0)
}
