package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"supportbot/internal/models"
)

// pendingPageSize bounds the pending list; the remainder is reachable through
// a More continuation button.
const pendingPageSize = 10

// questionKeyboard builds the action controls attached to a new-question
// notification in the admin chat.
func questionKeyboard(id int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Answer", fmt.Sprintf("%s_%d", verbAnswer, id)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Close", fmt.Sprintf("%s_%d", verbClose, id)),
			tgbotapi.NewInlineKeyboardButtonData("🚫 Spam", fmt.Sprintf("%s_%d", verbSpam, id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", fmt.Sprintf("%s_%d", verbDelete, id)),
			tgbotapi.NewInlineKeyboardButtonData("📋 All pending", verbViewAll),
		),
	)
}

// formatAdminNotification renders the admin-chat message for a new question.
func formatAdminNotification(id int64, user *tgbotapi.User, body string) string {
	return fmt.Sprintf(`🔔 New question received

From: %s (@%s)
User ID: %d
Question ID: #%d
Time: %s

Question:
%s`,
		user.FirstName,
		displayName(user),
		user.ID,
		id,
		time.Now().Format("2006-01-02 15:04:05"),
		body)
}

// formatAnswer renders the message delivered back to the requester, quoting
// the original question alongside the answer.
func formatAnswer(q *models.Question, answer string) string {
	return fmt.Sprintf(`✅ Your question has been answered

Your question:
%s

Answer:
%s

Question ID: #%d`, q.Body, answer, q.ID)
}

// sendPendingList renders the pending questions newest first as a fresh
// message with one control row per question, truncated to pendingPageSize.
func (b *Bot) sendPendingList(ctx context.Context, chatID int64, offset int) {
	pending, err := b.store.ListPending(ctx)
	if err != nil {
		b.logger.Error("Failed to list pending questions", zap.Error(err))
		b.reply(chatID, fmt.Sprintf("Failed to list pending questions: %v", err))
		return
	}

	if offset < 0 {
		offset = 0
	}
	if len(pending) == 0 || offset >= len(pending) {
		b.reply(chatID, "No pending questions.")
		return
	}

	end := offset + pendingPageSize
	if end > len(pending) {
		end = len(pending)
	}
	page := pending[offset:end]

	var text strings.Builder
	text.WriteString(fmt.Sprintf("📋 Pending questions (%d-%d of %d):\n\n", offset+1, end, len(pending)))
	for _, q := range page {
		text.WriteString(fmt.Sprintf("#%d from %s - %s\n%s\n\n",
			q.ID,
			q.Username,
			q.CreatedAt.Format("2006-01-02 15:04"),
			truncate(q.Body, 100)))
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, q := range page {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ #%d", q.ID), fmt.Sprintf("%s_%d", verbAnswer, q.ID)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("❌ #%d", q.ID), fmt.Sprintf("%s_%d", verbClose, q.ID)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🚫 #%d", q.ID), fmt.Sprintf("%s_%d", verbSpam, q.ID)),
		))
	}
	if end < len(pending) {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("More ▸", fmt.Sprintf("%s_%d", verbMore, end)),
		))
	}

	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if err := b.send(msg); err != nil {
		b.logger.Error("Failed to send pending list", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}
