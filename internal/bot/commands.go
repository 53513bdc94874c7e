package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleCommand dispatches a slash command.
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message, command string) {
	switch command {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "addadmin":
		b.handleAddAdmin(ctx, message)
	case "pending", "questions":
		if b.requireAdmin(ctx, message) {
			b.sendPendingList(ctx, message.Chat.ID, 0)
		}
	case "stats", "status":
		if b.requireAdmin(ctx, message) {
			b.handleStats(ctx, message)
		}
	case "reset_counter":
		if b.requireAdmin(ctx, message) {
			b.handleResetCounter(ctx, message)
		}
	case "cancel":
		if b.requireAdmin(ctx, message) {
			b.handleCancel(message)
		}
	default:
		b.reply(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

// requireAdmin rejects admin-only commands from other identities.
func (b *Bot) requireAdmin(ctx context.Context, message *tgbotapi.Message) bool {
	if b.isAdmin(ctx, message.From.ID) {
		return true
	}
	b.logger.Warn("Unauthorized command attempt",
		zap.Int64("user_id", message.From.ID),
		zap.String("text", message.Text),
	)
	b.reply(message.Chat.ID, "You are not authorized to use this command.")
	return false
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	text := fmt.Sprintf(`Welcome to the support bot, %s!

Send me your question as a plain message and I will forward it to the admin team. You will get the answer right here.

Commands:
/help - Show help
/pending - Pending questions (admin only)
/stats - Bot statistics (admin only)`, message.From.FirstName)

	b.reply(message.Chat.ID, text)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	text := `How it works:

For users:
1. Send any message with your question
2. The admin team gets notified
3. The answer comes back to this chat

For admins:
/pending - List pending questions
/stats - Question and admin counts
/cancel - Abandon the reply you started
/reset_counter - Rewind question ID allocation to 1
Press Answer under a question, then send the answer as a text message.`

	b.reply(message.Chat.ID, text)
}

// handleAddAdmin registers the sender as an admin. Open self-registration is
// how the original deployment bootstrapped its admin list; lock the command
// down at the chat level if that is not acceptable.
func (b *Bot) handleAddAdmin(ctx context.Context, message *tgbotapi.Message) {
	user := message.From
	if err := b.store.AddAdmin(ctx, user.ID, displayName(user)); err != nil {
		b.logger.Error("Failed to add admin",
			zap.Error(err),
			zap.Int64("user_id", user.ID),
		)
		b.reply(message.Chat.ID, fmt.Sprintf("Failed to add admin: %v", err))
		return
	}
	b.logger.Info("Admin added",
		zap.Int64("user_id", user.ID),
		zap.String("username", displayName(user)),
	)
	b.reply(message.Chat.ID, fmt.Sprintf("%s added as admin.", user.FirstName))
}

func (b *Bot) handleStats(ctx context.Context, message *tgbotapi.Message) {
	stats, err := b.store.Stats(ctx)
	if err != nil {
		b.logger.Error("Failed to read stats", zap.Error(err))
		b.reply(message.Chat.ID, fmt.Sprintf("Failed to read stats: %v", err))
		return
	}

	text := fmt.Sprintf(`Bot status

Total questions: %d
Pending: %d
Answered: %d
Admins: %d`, stats.Total, stats.Pending, stats.Answered, stats.Admins)

	b.reply(message.Chat.ID, text)
}

// handleResetCounter rewinds ID allocation to 1. Destructive if questions
// with low IDs are still stored: the next create overwrites them.
func (b *Bot) handleResetCounter(ctx context.Context, message *tgbotapi.Message) {
	if err := b.store.ResetCounter(ctx); err != nil {
		b.logger.Error("Failed to reset counter", zap.Error(err))
		b.reply(message.Chat.ID, fmt.Sprintf("Failed to reset counter: %v", err))
		return
	}
	b.logger.Warn("Question ID counter reset", zap.Int64("admin_id", message.From.ID))
	b.reply(message.Chat.ID, "Question ID counter reset to 1. New questions overwrite any record still stored under a reissued ID.")
}

func (b *Bot) handleCancel(message *tgbotapi.Message) {
	if _, ok := b.sessions.Current(message.From.ID); !ok {
		b.reply(message.Chat.ID, "No reply in progress.")
		return
	}
	b.sessions.Clear(message.From.ID)
	b.reply(message.Chat.ID, "Reply cancelled.")
}
