package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of the bot API the middleware replies through
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// updateIDs extracts the user and chat of an update; ok is false for update
// kinds the bot does not handle.
func updateIDs(update tgbotapi.Update) (userID, chatID int64, ok bool) {
	if update.Message == nil {
		return 0, 0, false
	}

	if update.Message.From != nil {
		userID = update.Message.From.ID
	}
	if update.Message.Chat != nil {
		chatID = update.Message.Chat.ID
	}
	return userID, chatID, true
}
