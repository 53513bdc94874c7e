package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// inboundKind tags a classified inbound message.
type inboundKind int

const (
	inboundCommand inboundKind = iota
	inboundTextQuestion
	inboundAdminReply
)

type inboundEvent struct {
	kind    inboundKind
	command string
}

// classifyMessage maps a raw message to the relay operation that consumes it.
// Admin free text is always a reply attempt, never a question: admins cannot
// ask questions through this channel.
func (b *Bot) classifyMessage(ctx context.Context, message *tgbotapi.Message) inboundEvent {
	if message.IsCommand() {
		return inboundEvent{kind: inboundCommand, command: message.Command()}
	}
	if b.isAdmin(ctx, message.From.ID) {
		return inboundEvent{kind: inboundAdminReply}
	}
	return inboundEvent{kind: inboundTextQuestion}
}

// Control verbs carried in callback tokens.
const (
	verbAnswer  = "answer"
	verbClose   = "close"
	verbSpam    = "spam"
	verbDelete  = "delete"
	verbViewAll = "view_all"
	verbMore    = "more"
)

// buttonAction is a parsed callback token. For "more" tokens Arg is a list
// offset; for the question verbs it is the question ID.
type buttonAction struct {
	Verb string
	Arg  int64
}

var errBadToken = errors.New("malformed callback token")

// parseButtonAction parses callback data of the form <verb>_<question-id>,
// e.g. "answer_7" or "close_42". "view_all" carries no argument and
// "more_<offset>" continues a truncated pending list.
func parseButtonAction(data string) (buttonAction, error) {
	if data == verbViewAll {
		return buttonAction{Verb: verbViewAll}, nil
	}

	idx := strings.LastIndex(data, "_")
	if idx <= 0 || idx == len(data)-1 {
		return buttonAction{}, errBadToken
	}

	verb, arg := data[:idx], data[idx+1:]
	switch verb {
	case verbAnswer, verbClose, verbSpam, verbDelete, verbMore:
	default:
		return buttonAction{}, errBadToken
	}

	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || n < 0 {
		return buttonAction{}, errBadToken
	}
	return buttonAction{Verb: verb, Arg: n}, nil
}

// isAdmin reports whether the user may invoke admin-only operations. The
// configured admin chat is always authorized; further admins come from the
// store's allow list.
func (b *Bot) isAdmin(ctx context.Context, userID int64) bool {
	if userID == b.adminChatID {
		return true
	}
	ok, err := b.store.IsAdmin(ctx, userID)
	if err != nil {
		b.logger.Error("Failed to check admin status",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return false
	}
	return ok
}
