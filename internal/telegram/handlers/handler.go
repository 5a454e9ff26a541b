package handlers

import (
	"context"
)

// Message represents a normalized Telegram message
type Message struct {
	ChatID    int64
	UserID    int64
	MessageID int
	Text      string
}

// Handler processes one kind of incoming message
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}
