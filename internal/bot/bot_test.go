package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"supportbot/internal/models"
	"supportbot/internal/storage/memstore"
)

const (
	testAdminChatID = int64(555)
	testUserID      = int64(100)
)

// fakeAPI records outbound traffic and can simulate delivery failures per
// target chat.
type fakeAPI struct {
	sent      []tgbotapi.Chattable
	requests  []tgbotapi.Chattable
	failChats map[int64]bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{failChats: make(map[int64]bool)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.failChats[chatTarget(c)] {
		return tgbotapi.Message{}, errors.New("forbidden: bot was blocked by the user")
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func chatTarget(c tgbotapi.Chattable) int64 {
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		return m.ChatID
	case tgbotapi.EditMessageTextConfig:
		return m.ChatID
	}
	return 0
}

// textsTo returns the message texts sent to a chat, in order.
func (f *fakeAPI) textsTo(chatID int64) []string {
	var texts []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok && m.ChatID == chatID {
			texts = append(texts, m.Text)
		}
	}
	return texts
}

// lastMessageTo returns the last MessageConfig sent to a chat.
func (f *fakeAPI) lastMessageTo(t *testing.T, chatID int64) tgbotapi.MessageConfig {
	t.Helper()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if m, ok := f.sent[i].(tgbotapi.MessageConfig); ok && m.ChatID == chatID {
			return m
		}
	}
	t.Fatalf("no message sent to chat %d", chatID)
	return tgbotapi.MessageConfig{}
}

func newTestBot() (*Bot, *fakeAPI, *memstore.MemStore) {
	fake := newFakeAPI()
	store := memstore.New()
	b := &Bot{
		client:      fake,
		store:       store,
		sessions:    newSessions(),
		adminChatID: testAdminChatID,
		logger:      zap.NewNop(),
	}
	return b, fake, store
}

func textMessage(userID int64, username, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID, UserName: username, FirstName: username},
		Chat:      &tgbotapi.Chat{ID: userID},
		Text:      text,
	}
}

func commandMessage(userID int64, username, text string) *tgbotapi.Message {
	msg := textMessage(userID, username, text)
	cmdLen := len(text)
	if idx := strings.IndexAny(text, " "); idx > 0 {
		cmdLen = idx
	}
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}
	return msg
}

func adminCallback(data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: testAdminChatID, UserName: "admin", FirstName: "admin"},
		Message: &tgbotapi.Message{
			MessageID: 10,
			Chat:      &tgbotapi.Chat{ID: testAdminChatID},
			Text:      "🔔 New question received",
		},
		Data: data,
	}
}

func TestRelay_QuestionToAnswer(t *testing.T) {
	b, fake, store := newTestBot()

	// User asks a question
	b.HandleUpdate(tgbotapi.Update{Message: textMessage(testUserID, "alice", "How do I export my data?")})

	userTexts := fake.textsTo(testUserID)
	require.Len(t, userTexts, 1)
	assert.Contains(t, userTexts[0], "Question ID: #1")

	notification := fake.lastMessageTo(t, testAdminChatID)
	assert.Contains(t, notification.Text, "How do I export my data?")
	assert.Contains(t, notification.Text, "Question ID: #1")
	markup, ok := notification.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, "answer_1", *markup.InlineKeyboard[0][0].CallbackData)

	// Admin presses Answer and sends the reply text
	b.HandleUpdate(tgbotapi.Update{CallbackQuery: adminCallback("answer_1")})

	id, open := b.sessions.Current(testAdminChatID)
	require.True(t, open)
	assert.Equal(t, int64(1), id)

	b.HandleUpdate(tgbotapi.Update{Message: textMessage(testAdminChatID, "admin", "Settings > Export.")})

	userTexts = fake.textsTo(testUserID)
	require.Len(t, userTexts, 2)
	assert.Contains(t, userTexts[1], "Settings > Export.")
	assert.Contains(t, userTexts[1], "How do I export my data?")

	confirmation := fake.lastMessageTo(t, testAdminChatID)
	assert.Contains(t, confirmation.Text, "Reply sent to user!")

	q, err := store.GetQuestion(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAnswered, q.Status)
	assert.Equal(t, "Settings > Export.", q.Answer)

	_, open = b.sessions.Current(testAdminChatID)
	assert.False(t, open)
}

func TestAnswerButton_MissingQuestion(t *testing.T) {
	b, fake, _ := newTestBot()

	b.HandleUpdate(tgbotapi.Update{CallbackQuery: adminCallback("answer_5")})

	_, open := b.sessions.Current(testAdminChatID)
	assert.False(t, open)
	assert.Contains(t, fake.lastMessageTo(t, testAdminChatID).Text, "Question #5 not found.")
}

func TestAnswerButton_AlreadyTerminal(t *testing.T) {
	b, fake, store := newTestBot()
	ctx := context.Background()

	id, err := store.CreateQuestion(ctx, testUserID, "alice", "q")
	require.NoError(t, err)
	require.NoError(t, store.SetStatus(ctx, id, models.StatusClosed))

	b.HandleUpdate(tgbotapi.Update{CallbackQuery: adminCallback(fmt.Sprintf("answer_%d", id))})

	_, open := b.sessions.Current(testAdminChatID)
	assert.False(t, open)
	assert.Contains(t, fake.lastMessageTo(t, testAdminChatID).Text, "already closed")
}

func TestCallback_UnauthorizedHasNoSideEffect(t *testing.T) {
	b, fake, store := newTestBot()
	ctx := context.Background()

	id, err := store.CreateQuestion(ctx, testUserID, "alice", "q")
	require.NoError(t, err)

	query := adminCallback(fmt.Sprintf("close_%d", id))
	query.From = &tgbotapi.User{ID: 777, UserName: "stranger"}
	b.HandleUpdate(tgbotapi.Update{CallbackQuery: query})

	q, err := store.GetQuestion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, q.Status)
	assert.Empty(t, fake.sent)

	// The press is still acknowledged, with an alert
	require.Len(t, fake.requests, 1)
	cb, ok := fake.requests[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.True(t, cb.ShowAlert)
}

func TestCallback_MalformedTokenIgnored(t *testing.T) {
	b, fake, _ := newTestBot()

	b.HandleUpdate(tgbotapi.Update{CallbackQuery: adminCallback("frobnicate_7")})

	assert.Empty(t, fake.sent)
	assert.Len(t, fake.requests, 1)
}

func TestAdminReply_SessionOverwrite(t *testing.T) {
	b, fake, store := newTestBot()
	ctx := context.Background()

	id1, err := store.CreateQuestion(ctx, testUserID, "alice", "first")
	require.NoError(t, err)
	id2, err := store.CreateQuestion(ctx, 101, "bob", "second")
	require.NoError(t, err)

	// Pressing Answer twice keeps only the second target
	b.HandleUpdate(tgbotapi.Update{CallbackQuery: adminCallback(fmt.Sprintf("answer_%d", id1))})
	b.HandleUpdate(tgbotapi.Update{CallbackQuery: adminCallback(fmt.Sprintf("answer_%d", id2))})
	b.HandleUpdate(tgbotapi.Update{Message: textMessage(testAdminChatID, "admin", "answer for bob")})

	q1, err := store.GetQuestion(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, q1.Status)

	q2, err := store.GetQuestion(ctx, id2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAnswered, q2.Status)

	assert.Len(t, fake.textsTo(101), 1)
	assert.Empty(t, fake.textsTo(testUserID))
}

func TestAdminReply_NoSession(t *testing.T) {
	b, fake, _ := newTestBot()

	b.HandleUpdate(tgbotapi.Update{Message: textMessage(testAdminChatID, "admin", "stray text")})

	assert.Contains(t, fake.lastMessageTo(t, testAdminChatID).Text, "No question selected.")
}

func TestAdminReply_DeliveryFailureKeepsPending(t *testing.T) {
	b, fake, store := newTestBot()
	ctx := context.Background()

	id, err := store.CreateQuestion(ctx, testUserID, "alice", "q")
	require.NoError(t, err)

	fake.failChats[testUserID] = true

	b.HandleUpdate(tgbotapi.Update{CallbackQuery: adminCallback(fmt.Sprintf("answer_%d", id))})
	b.HandleUpdate(tgbotapi.Update{Message: textMessage(testAdminChatID, "admin", "the answer")})

	q, err := store.GetQuestion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, q.Status)
	assert.Empty(t, q.Answer)

	_, open := b.sessions.Current(testAdminChatID)
	assert.False(t, open)

	assert.Contains(t, fake.lastMessageTo(t, testAdminChatID).Text, "still pending")
}

func TestIncomingQuestion_AdminNotifyFailureSwallowed(t *testing.T) {
	b, fake, store := newTestBot()

	fake.failChats[testAdminChatID] = true

	b.HandleUpdate(tgbotapi.Update{Message: textMessage(testUserID, "alice", "anyone there?")})

	// The question is stored and the requester is acked regardless
	q, err := store.GetQuestion(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, q.Status)

	userTexts := fake.textsTo(testUserID)
	require.Len(t, userTexts, 1)
	assert.Contains(t, userTexts[0], "Question ID: #1")
}

func TestCloseButton_NotifiesRequester(t *testing.T) {
	b, fake, store := newTestBot()
	ctx := context.Background()

	id, err := store.CreateQuestion(ctx, testUserID, "alice", "q")
	require.NoError(t, err)

	b.HandleUpdate(tgbotapi.Update{CallbackQuery: adminCallback(fmt.Sprintf("close_%d", id))})

	q, err := store.GetQuestion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, q.Status)

	userTexts := fake.textsTo(testUserID)
	require.Len(t, userTexts, 1)
	assert.Contains(t, userTexts[0], "was closed")
}

func TestSpamButton_SilentForRequester(t *testing.T) {
	b, fake, store := newTestBot()
	ctx := context.Background()

	id, err := store.CreateQuestion(ctx, testUserID, "alice", "buy cheap meds")
	require.NoError(t, err)

	b.HandleUpdate(tgbotapi.Update{CallbackQuery: adminCallback(fmt.Sprintf("spam_%d", id))})

	q, err := store.GetQuestion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSpam, q.Status)
	assert.Empty(t, fake.textsTo(testUserID))
}

func TestPendingList_Pagination(t *testing.T) {
	b, fake, store := newTestBot()
	ctx := context.Background()

	for i := 0; i < 13; i++ {
		_, err := store.CreateQuestion(ctx, testUserID, "alice", fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}

	b.HandleUpdate(tgbotapi.Update{Message: commandMessage(testAdminChatID, "admin", "/pending")})

	first := fake.lastMessageTo(t, testAdminChatID)
	assert.Contains(t, first.Text, "(1-10 of 13)")
	markup, ok := first.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 11)

	moreRow := markup.InlineKeyboard[10]
	require.Len(t, moreRow, 1)
	assert.Equal(t, "more_10", *moreRow[0].CallbackData)

	b.HandleUpdate(tgbotapi.Update{CallbackQuery: adminCallback("more_10")})

	second := fake.lastMessageTo(t, testAdminChatID)
	assert.Contains(t, second.Text, "(11-13 of 13)")
	markup, ok = second.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, markup.InlineKeyboard, 3)
}

func TestPendingList_Empty(t *testing.T) {
	b, fake, _ := newTestBot()

	b.HandleUpdate(tgbotapi.Update{Message: commandMessage(testAdminChatID, "admin", "/pending")})

	assert.Contains(t, fake.lastMessageTo(t, testAdminChatID).Text, "No pending questions.")
}

func TestPendingCommand_Unauthorized(t *testing.T) {
	b, fake, store := newTestBot()

	_, err := store.CreateQuestion(context.Background(), testUserID, "alice", "q")
	require.NoError(t, err)

	b.HandleUpdate(tgbotapi.Update{Message: commandMessage(777, "stranger", "/pending")})

	texts := fake.textsTo(777)
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "not authorized")
}

func TestAddAdmin_GrantsCommands(t *testing.T) {
	b, fake, _ := newTestBot()

	b.HandleUpdate(tgbotapi.Update{Message: commandMessage(777, "newadmin", "/addadmin")})
	b.HandleUpdate(tgbotapi.Update{Message: commandMessage(777, "newadmin", "/stats")})

	texts := fake.textsTo(777)
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "added as admin")
	assert.Contains(t, texts[1], "Total questions: 0")
}

func TestResetCounterCommand(t *testing.T) {
	b, fake, store := newTestBot()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.CreateQuestion(ctx, testUserID, "alice", "q")
		require.NoError(t, err)
	}

	b.HandleUpdate(tgbotapi.Update{Message: commandMessage(testAdminChatID, "admin", "/reset_counter")})
	assert.Contains(t, fake.lastMessageTo(t, testAdminChatID).Text, "reset to 1")

	id, err := store.CreateQuestion(ctx, testUserID, "alice", "fresh")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestCancelCommand(t *testing.T) {
	b, fake, store := newTestBot()
	ctx := context.Background()

	id, err := store.CreateQuestion(ctx, testUserID, "alice", "q")
	require.NoError(t, err)

	b.HandleUpdate(tgbotapi.Update{CallbackQuery: adminCallback(fmt.Sprintf("answer_%d", id))})
	b.HandleUpdate(tgbotapi.Update{Message: commandMessage(testAdminChatID, "admin", "/cancel")})

	_, open := b.sessions.Current(testAdminChatID)
	assert.False(t, open)
	assert.Contains(t, fake.lastMessageTo(t, testAdminChatID).Text, "Reply cancelled.")

	// A second cancel reports there is nothing to abandon
	b.HandleUpdate(tgbotapi.Update{Message: commandMessage(testAdminChatID, "admin", "/cancel")})
	assert.Contains(t, fake.lastMessageTo(t, testAdminChatID).Text, "No reply in progress.")
}

func TestDeleteButton(t *testing.T) {
	b, fake, store := newTestBot()
	ctx := context.Background()

	id, err := store.CreateQuestion(ctx, testUserID, "alice", "q")
	require.NoError(t, err)

	b.HandleUpdate(tgbotapi.Update{CallbackQuery: adminCallback(fmt.Sprintf("delete_%d", id))})

	_, err = store.GetQuestion(ctx, id)
	assert.Error(t, err)

	// The notification message is edited in place
	var edits []tgbotapi.EditMessageTextConfig
	for _, c := range fake.sent {
		if e, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			edits = append(edits, e)
		}
	}
	require.Len(t, edits, 1)
	assert.Contains(t, edits[0].Text, "Question deleted.")
}

func TestUnknownCommand(t *testing.T) {
	b, fake, _ := newTestBot()

	b.HandleUpdate(tgbotapi.Update{Message: commandMessage(testUserID, "alice", "/bogus")})

	assert.Contains(t, fake.lastMessageTo(t, testUserID).Text, "Unknown command")
}
