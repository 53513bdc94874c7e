package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	sentryutil "supportbot/internal/sentry"
)

// HandleUpdate processes a single update from polling or webhook delivery.
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	if update.Message != nil && update.Message.From != nil {
		b.handleMessage(update.Message)
	}

	if update.CallbackQuery != nil {
		b.handleCallbackQuery(update.CallbackQuery)
	}
}

// handleMessage processes a single text message.
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			sentryutil.Recover(r)
			b.logger.Error("Recovered from panic in handleMessage",
				zap.Any("panic", r),
				zap.Int64("user_id", message.From.ID),
			)
			b.reply(message.Chat.ID, "An error occurred while processing your message. Please try again.")
		}
	}()

	if message.Text == "" {
		return
	}

	ctx := context.Background()
	event := b.classifyMessage(ctx, message)

	switch event.kind {
	case inboundCommand:
		b.handleCommand(ctx, message, event.command)
	case inboundAdminReply:
		b.handleAdminReply(ctx, message)
	case inboundTextQuestion:
		b.handleIncomingQuestion(ctx, message)
	}
}

// handleCallbackQuery processes inline keyboard button presses. Any control
// pressed by a non-admin identity is rejected with no side effect.
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	defer func() {
		if r := recover(); r != nil {
			sentryutil.Recover(r)
			b.logger.Error("Recovered from panic in handleCallbackQuery",
				zap.Any("panic", r),
				zap.String("data", query.Data),
			)
		}
	}()

	if query.Message == nil {
		return
	}

	ctx := context.Background()

	action, err := parseButtonAction(query.Data)
	if err != nil {
		b.logger.Warn("Ignoring malformed callback token", zap.String("data", query.Data))
		b.request(tgbotapi.NewCallback(query.ID, ""))
		return
	}

	if !b.isAdmin(ctx, query.From.ID) {
		b.logger.Warn("Unauthorized callback attempt",
			zap.Int64("user_id", query.From.ID),
			zap.String("data", query.Data),
		)
		b.request(tgbotapi.NewCallbackWithAlert(query.ID, "You are not authorized to use this control."))
		return
	}

	// Answer the callback query to remove the loading state
	b.request(tgbotapi.NewCallback(query.ID, ""))

	chatID := query.Message.Chat.ID
	switch action.Verb {
	case verbAnswer:
		b.handleAnswerButton(ctx, query, action.Arg)
	case verbClose:
		b.handleTerminalButton(ctx, query, action.Arg, false)
	case verbSpam:
		b.handleTerminalButton(ctx, query, action.Arg, true)
	case verbDelete:
		b.handleDeleteButton(ctx, query, action.Arg)
	case verbViewAll:
		b.sendPendingList(ctx, chatID, 0)
	case verbMore:
		b.sendPendingList(ctx, chatID, int(action.Arg))
	}
}
