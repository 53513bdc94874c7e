package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"supportbot/internal/storage"
)

// NewBot creates a new Telegram bot bound to the given store and admin chat.
func NewBot(token string, store storage.Store, adminChatID int64, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created",
		zap.String("bot_username", api.Self.UserName),
		zap.Int64("admin_chat_id", adminChatID),
	)

	return &Bot{
		api:         api,
		client:      api,
		store:       store,
		sessions:    newSessions(),
		adminChatID: adminChatID,
		logger:      logger,
	}, nil
}
