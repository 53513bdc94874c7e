package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"supportbot/internal/models"
	"supportbot/internal/storage"
)

// handleAnswerButton opens a reply session for the question and marks the
// admin-facing message as awaiting an answer. No session is opened if the
// question is missing or already terminal.
func (b *Bot) handleAnswerButton(ctx context.Context, query *tgbotapi.CallbackQuery, id int64) {
	chatID := query.Message.Chat.ID

	q, err := b.store.GetQuestion(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.reply(chatID, fmt.Sprintf("Question #%d not found.", id))
			return
		}
		b.logger.Error("Failed to load question",
			zap.Error(err),
			zap.Int64("question_id", id),
		)
		b.reply(chatID, fmt.Sprintf("Failed to load question #%d: %v", id, err))
		return
	}
	if q.Status != models.StatusPending {
		b.reply(chatID, fmt.Sprintf("Question #%d is already %s.", id, q.Status))
		return
	}

	b.sessions.Begin(query.From.ID, id)

	edit := tgbotapi.NewEditMessageText(chatID, query.Message.MessageID,
		query.Message.Text+"\n\n✏️ Awaiting answer. Send it as a text message.")
	if err := b.send(edit); err != nil {
		b.logger.Warn("Failed to edit admin message",
			zap.Error(err),
			zap.Int64("question_id", id),
		)
	}
}

// handleTerminalButton moves a pending question to closed or spam. On close
// the requester gets a best-effort notice.
func (b *Bot) handleTerminalButton(ctx context.Context, query *tgbotapi.CallbackQuery, id int64, spam bool) {
	chatID := query.Message.Chat.ID

	status := models.StatusClosed
	if spam {
		status = models.StatusSpam
	}

	q, err := b.store.GetQuestion(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.reply(chatID, fmt.Sprintf("Question #%d not found.", id))
			return
		}
		b.logger.Error("Failed to load question",
			zap.Error(err),
			zap.Int64("question_id", id),
		)
		b.reply(chatID, fmt.Sprintf("Failed to load question #%d: %v", id, err))
		return
	}

	if err := b.store.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.reply(chatID, fmt.Sprintf("Question #%d is already %s.", id, q.Status))
			return
		}
		b.logger.Error("Failed to update question status",
			zap.Error(err),
			zap.Int64("question_id", id),
			zap.String("status", string(status)),
		)
		b.reply(chatID, fmt.Sprintf("Failed to update question #%d: %v", id, err))
		return
	}

	note := "❌ Question closed."
	if spam {
		note = "🚫 Marked as spam."
	}
	edit := tgbotapi.NewEditMessageText(chatID, query.Message.MessageID, query.Message.Text+"\n\n"+note)
	if err := b.send(edit); err != nil {
		b.logger.Warn("Failed to edit admin message", zap.Error(err), zap.Int64("question_id", id))
	}

	if !spam {
		// Best effort: the close stands even if the requester is unreachable.
		if err := b.send(tgbotapi.NewMessage(q.UserID, fmt.Sprintf(
			"Your question #%d was closed by the support team.", id))); err != nil {
			b.logger.Warn("Failed to notify requester of close",
				zap.Error(err),
				zap.Int64("question_id", id),
			)
		}
	}

	b.logger.Info("Question moved to terminal status",
		zap.Int64("question_id", id),
		zap.String("status", string(status)),
	)
}

// handleDeleteButton removes a question outright. Irreversible.
func (b *Bot) handleDeleteButton(ctx context.Context, query *tgbotapi.CallbackQuery, id int64) {
	chatID := query.Message.Chat.ID

	if err := b.store.DeleteQuestion(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.reply(chatID, fmt.Sprintf("Question #%d not found.", id))
			return
		}
		b.logger.Error("Failed to delete question",
			zap.Error(err),
			zap.Int64("question_id", id),
		)
		b.reply(chatID, fmt.Sprintf("Failed to delete question #%d: %v", id, err))
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, query.Message.MessageID,
		query.Message.Text+"\n\n🗑 Question deleted.")
	if err := b.send(edit); err != nil {
		b.logger.Warn("Failed to edit admin message", zap.Error(err), zap.Int64("question_id", id))
	}

	b.logger.Info("Question deleted", zap.Int64("question_id", id))
}
