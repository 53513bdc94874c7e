package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"supportbot/internal/models"
	sentryutil "supportbot/internal/sentry"
	"supportbot/internal/storage"
)

// handleIncomingQuestion is the intake path: persist the question, ack the
// sender with the assigned ID, then notify the admin chat with action
// controls.
func (b *Bot) handleIncomingQuestion(ctx context.Context, message *tgbotapi.Message) {
	user := message.From

	id, err := b.store.CreateQuestion(ctx, user.ID, displayName(user), message.Text)
	if err != nil {
		b.logger.Error("Failed to store question",
			zap.Error(err),
			zap.Int64("user_id", user.ID),
		)
		b.reply(message.Chat.ID, "Sorry, your question could not be saved. Please try again later.")
		return
	}

	b.reply(message.Chat.ID, fmt.Sprintf(
		"Your question has been received!\n\nQuestion ID: #%d\nOur admin team will respond soon.", id))

	// Notification failure is logged and swallowed: the question is stored
	// and still reachable via /pending.
	notification := tgbotapi.NewMessage(b.adminChatID, formatAdminNotification(id, user, message.Text))
	notification.ReplyMarkup = questionKeyboard(id)
	if err := b.send(notification); err != nil {
		b.logger.Error("Failed to notify admin chat",
			zap.Error(err),
			zap.Int64("question_id", id),
		)
		sentryutil.CaptureError(err, map[string]string{"op": "notify_admin"})
		return
	}

	b.logger.Info("Question forwarded to admin chat",
		zap.Int64("question_id", id),
		zap.Int64("user_id", user.ID),
	)
}

// handleAdminReply is the answer path: resolve the admin's open session,
// attempt one delivery to the requester, then record the answer.
func (b *Bot) handleAdminReply(ctx context.Context, message *tgbotapi.Message) {
	adminID := message.From.ID

	questionID, ok := b.sessions.Current(adminID)
	if !ok {
		b.reply(message.Chat.ID, "No question selected. Press the Answer button under a question first.")
		return
	}

	q, err := b.store.GetQuestion(ctx, questionID)
	if err != nil {
		b.sessions.Clear(adminID)
		if errors.Is(err, storage.ErrNotFound) {
			b.reply(message.Chat.ID, fmt.Sprintf("Question #%d no longer exists.", questionID))
			return
		}
		b.logger.Error("Failed to load question for reply",
			zap.Error(err),
			zap.Int64("question_id", questionID),
		)
		b.reply(message.Chat.ID, fmt.Sprintf("Failed to load question #%d: %v", questionID, err))
		return
	}
	if q.Status != models.StatusPending {
		b.sessions.Clear(adminID)
		b.reply(message.Chat.ID, fmt.Sprintf("Question #%d is already %s.", questionID, q.Status))
		return
	}

	// The session is spent after one delivery attempt, success or failure.
	b.sessions.Clear(adminID)

	answer := message.Text
	if err := b.send(tgbotapi.NewMessage(q.UserID, formatAnswer(q, answer))); err != nil {
		// The question stays pending so the admin can press Answer and retry.
		b.logger.Error("Failed to deliver answer",
			zap.Error(err),
			zap.Int64("question_id", questionID),
			zap.Int64("user_id", q.UserID),
		)
		b.reply(message.Chat.ID, fmt.Sprintf(
			"Failed to deliver the answer for question #%d: %v\nThe question is still pending; press Answer to retry.",
			questionID, err))
		return
	}

	if err := b.store.SetAnswered(ctx, questionID, answer); err != nil {
		b.logger.Error("Failed to record answer",
			zap.Error(err),
			zap.Int64("question_id", questionID),
		)
		b.reply(message.Chat.ID, fmt.Sprintf(
			"The answer was delivered but could not be recorded: %v", err))
		return
	}

	b.logger.Info("Answer delivered",
		zap.Int64("question_id", questionID),
		zap.Int64("user_id", q.UserID),
	)
	b.reply(message.Chat.ID, fmt.Sprintf(
		"Reply sent to user!\n\nQuestion ID: #%d\nUser: %s", questionID, q.Username))
}
