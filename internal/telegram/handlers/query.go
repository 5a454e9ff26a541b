package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/bms-rag/internal/entity"
	"github.com/futig/bms-rag/internal/pkg/validator"
	"github.com/futig/bms-rag/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// QueryHandler answers free text messages through the RAG pipeline
type QueryHandler struct {
	api       BotAPI
	sender    *MessageSender
	usecase   RagUsecase
	formatter Formatter
	logger    *zap.Logger
	now       func() time.Time
}

func NewQueryHandler(api BotAPI, usecase RagUsecase, formatter Formatter, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		api:       api,
		sender:    NewMessageSender(api, logger),
		usecase:   usecase,
		formatter: formatter,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle returns pipeline and validation errors; the caller tells the user about them.
func (h *QueryHandler) Handle(ctx context.Context, msg *Message) error {
	req := entity.QueryRequest{Query: msg.Text}
	if err := validator.ValidateQuery(&req); err != nil {
		return err
	}

	typing := NewTypingNotifier(h.api, msg.ChatID, h.logger)
	typing.Start(ctx)
	answer, err := h.usecase.Ask(ctx, req.Query)
	typing.Stop()
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	if !answer.Parsed() {
		ctxzap.Warn(ctx, "reply not sent as document, parse failed",
			zap.String("parse_error", answer.ParseError),
		)
		return h.sender.Send(msg.ChatID, render.RenderParseFailure(answer.ParseError), msg.MessageID)
	}

	if err := h.sender.Send(msg.ChatID, render.RenderSummary(answer), msg.MessageID); err != nil {
		return err
	}

	body, err := h.formatter.Format(answer)
	if err != nil {
		return fmt.Errorf("format answer: %w", err)
	}

	filename := fmt.Sprintf("result_%s%s", h.now().Format("20060102_150405"), h.formatter.FileExtension())
	if err := h.sender.SendDocument(msg.ChatID, filename, render.MsgResultCaption, body); err != nil {
		return err
	}

	ctxzap.Info(ctx, "answer sent",
		zap.String("intent", answer.Intent),
		zap.Int("bytes", len(body)),
	)
	return nil
}
