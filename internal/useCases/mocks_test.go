package useCases_test

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type forwardCall struct {
	fromChatID int64
	messageID  int64
	toChatID   int64
}

type editCall struct {
	chatID    int64
	messageID int64
	text      string
	rows      []domain.ButtonRow
}

type fileCall struct {
	chatID  int64
	caption string
	body    string
}

type mockTelegram struct {
	mu        sync.Mutex
	sent      []domain.OutboundMessage
	forwarded []forwardCall
	edits     []editCall
	answered  []int64
	files     []fileCall
	commands  []domain.BotCommand
	closed    bool

	listenFn       func(ctx context.Context) (<-chan domain.Update, error)
	sendFn         func(ctx context.Context, msg domain.OutboundMessage) (int64, error)
	forwardFn      func(ctx context.Context, fromChatID, messageID, toChatID int64) (int64, error)
	editFn         func(ctx context.Context, chatID, messageID int64, text string, rows []domain.ButtonRow) error
	fetchProfileFn func(ctx context.Context, userID int64) (*domain.Profile, error)
	sendFileFn     func(ctx context.Context, chatID int64, path, caption string) error
}

func (m *mockTelegram) Listen(ctx context.Context) (<-chan domain.Update, error) {
	if m.listenFn != nil {
		return m.listenFn(ctx)
	}
	ch := make(chan domain.Update)
	close(ch)
	return ch, nil
}

func (m *mockTelegram) Send(ctx context.Context, msg domain.OutboundMessage) (int64, error) {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	id := int64(1000 + len(m.sent))
	m.mu.Unlock()

	if m.sendFn != nil {
		return m.sendFn(ctx, msg)
	}
	return id, nil
}

func (m *mockTelegram) ForwardMessage(ctx context.Context, fromChatID, messageID, toChatID int64) (int64, error) {
	m.mu.Lock()
	m.forwarded = append(m.forwarded, forwardCall{fromChatID: fromChatID, messageID: messageID, toChatID: toChatID})
	id := int64(500 + len(m.forwarded))
	m.mu.Unlock()

	if m.forwardFn != nil {
		return m.forwardFn(ctx, fromChatID, messageID, toChatID)
	}
	return id, nil
}

func (m *mockTelegram) EditMessage(ctx context.Context, chatID, messageID int64, text string, rows []domain.ButtonRow) error {
	m.mu.Lock()
	m.edits = append(m.edits, editCall{chatID: chatID, messageID: messageID, text: text, rows: rows})
	m.mu.Unlock()

	if m.editFn != nil {
		return m.editFn(ctx, chatID, messageID, text, rows)
	}
	return nil
}

func (m *mockTelegram) AnswerCallback(_ context.Context, queryID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answered = append(m.answered, queryID)
	return nil
}

func (m *mockTelegram) FetchProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	if m.fetchProfileFn != nil {
		return m.fetchProfileFn(ctx, userID)
	}
	return &domain.Profile{ID: userID, FirstName: "Alice", LanguageCode: "en"}, nil
}

func (m *mockTelegram) SetCommands(_ context.Context, cmds []domain.BotCommand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = cmds
	return nil
}

func (m *mockTelegram) SendFile(ctx context.Context, chatID int64, path, caption string) error {
	if m.sendFileFn != nil {
		return m.sendFileFn(ctx, chatID, path, caption)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append(m.files, fileCall{chatID: chatID, caption: caption})
	return nil
}

func (m *mockTelegram) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *mockTelegram) Sent() []domain.OutboundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.sent)
}

func (m *mockTelegram) Forwarded() []forwardCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.forwarded)
}

func (m *mockTelegram) Edits() []editCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.edits)
}

func (m *mockTelegram) Answered() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.answered)
}

func (m *mockTelegram) Files() []fileCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.files)
}

// mockUserStore хранит пользователей в памяти; *Fn перекрывают поведение
type mockUserStore struct {
	mu     sync.Mutex
	users  map[int64]domain.User
	banned map[int64]bool

	isBannedFn  func(ctx context.Context, userID int64) (bool, error)
	setBannedFn func(ctx context.Context, userID int64, banned bool) error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		users:  make(map[int64]domain.User),
		banned: make(map[int64]bool),
	}
}

func (m *mockUserStore) UpsertUser(_ context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		m.users[u.ID] = u
	}
	return nil
}

func (m *mockUserStore) IsBanned(ctx context.Context, userID int64) (bool, error) {
	if m.isBannedFn != nil {
		return m.isBannedFn(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.banned[userID], nil
}

func (m *mockUserStore) SetBanned(ctx context.Context, userID int64, banned bool) error {
	if m.setBannedFn != nil {
		return m.setBannedFn(ctx, userID, banned)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if banned {
		m.banned[userID] = true
	} else {
		delete(m.banned, userID)
	}
	return nil
}

func (m *mockUserStore) ListBanned(_ context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.banned))
	for id := range m.banned {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *mockUserStore) CountUsers(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *mockUserStore) Close() error {
	return nil
}

func (m *mockUserStore) Registered(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[userID]
	return ok
}

type mockConversationStore struct {
	mu     sync.Mutex
	states map[int64]domain.ConversationState
}

func newMockConversationStore() *mockConversationStore {
	return &mockConversationStore{states: make(map[int64]domain.ConversationState)}
}

func (m *mockConversationStore) Get(_ context.Context, userID int64) (domain.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[userID], nil
}

func (m *mockConversationStore) Update(
	_ context.Context,
	userID int64,
	fn func(domain.ConversationState) domain.ConversationState,
) (domain.ConversationState, domain.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.states[userID]
	next := fn(prev)
	m.states[userID] = next
	return prev, next, nil
}
