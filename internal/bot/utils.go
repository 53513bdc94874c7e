package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// send delivers one outbound message. The single attempt either succeeds or
// returns the transport error; there is no retry.
func (b *Bot) send(c tgbotapi.Chattable) error {
	if b.client == nil {
		return nil // for tests
	}
	_, err := b.client.Send(c)
	return err
}

// reply sends plain text to a chat, logging (not propagating) failures.
func (b *Bot) reply(chatID int64, text string) {
	if err := b.send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// request performs a non-message API call such as answering a callback query.
func (b *Bot) request(c tgbotapi.Chattable) {
	if b.client == nil {
		return // for tests
	}
	if _, err := b.client.Request(c); err != nil {
		b.logger.Warn("API request failed", zap.Error(err))
	}
}

// displayName picks the name shown to the admin for a requester.
func displayName(user *tgbotapi.User) string {
	if user.UserName != "" {
		return user.UserName
	}
	return user.FirstName
}

// truncate shortens s to at most n runes for list rendering.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
