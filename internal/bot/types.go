package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"supportbot/internal/storage"
)

// TelegramAPI is the slice of the Telegram bot API the handlers talk to.
// Tests inject a fake that records outbound traffic.
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot wires the Telegram transport to the question store and the admin reply
// sessions.
type Bot struct {
	api         *tgbotapi.BotAPI // polling/webhook lifecycle; nil in tests
	client      TelegramAPI      // outbound sends; a fake in tests
	store       storage.Store
	sessions    *sessions
	adminChatID int64
	logger      *zap.Logger
}
