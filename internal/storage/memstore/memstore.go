package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"supportbot/internal/models"
	"supportbot/internal/storage"
)

// MemStore is an in-process implementation of the Store interface. It backs
// the volatile deployment variant and doubles as the test store: everything
// is lost on restart.
type MemStore struct {
	mu        sync.RWMutex
	nextID    int64
	questions map[int64]models.Question
	admins    map[int64]models.Admin
}

// New creates an empty in-memory store.
func New() *MemStore {
	return &MemStore{
		nextID:    1,
		questions: make(map[int64]models.Question),
		admins:    make(map[int64]models.Admin),
	}
}

// Initialize is a no-op; the store starts empty.
func (m *MemStore) Initialize(ctx context.Context) error {
	return nil
}

// CreateQuestion inserts a new pending question under the next counter value.
func (m *MemStore) CreateQuestion(ctx context.Context, userID int64, username, body string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.questions[id] = models.Question{
		ID:        id,
		UserID:    userID,
		Username:  username,
		Body:      body,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}
	return id, nil
}

func (m *MemStore) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q, ok := m.questions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &q, nil
}

// ListPending returns pending questions newest first.
func (m *MemStore) ListPending(ctx context.Context) ([]models.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var pending []models.Question
	for _, q := range m.questions {
		if q.Status == models.StatusPending {
			pending = append(pending, q)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].CreatedAt.After(pending[j].CreatedAt)
		}
		return pending[i].ID > pending[j].ID
	})
	return pending, nil
}

func (m *MemStore) SetAnswered(ctx context.Context, id int64, answer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.questions[id]
	if !ok || q.Status != models.StatusPending {
		return storage.ErrNotFound
	}
	now := time.Now()
	q.Status = models.StatusAnswered
	q.Answer = answer
	q.AnsweredAt = &now
	m.questions[id] = q
	return nil
}

func (m *MemStore) SetStatus(ctx context.Context, id int64, status models.Status) error {
	if !status.Terminal() {
		return storage.ErrInvalidStatus
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.questions[id]
	if !ok || q.Status != models.StatusPending {
		return storage.ErrNotFound
	}
	q.Status = status
	m.questions[id] = q
	return nil
}

func (m *MemStore) DeleteQuestion(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.questions[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.questions, id)
	return nil
}

// ResetCounter rewinds ID allocation to 1. The next create overwrites any
// record still stored under that ID.
func (m *MemStore) ResetCounter(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID = 1
	return nil
}

func (m *MemStore) Stats(ctx context.Context) (models.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := models.Stats{
		Total:  int64(len(m.questions)),
		Admins: int64(len(m.admins)),
	}
	for _, q := range m.questions {
		switch q.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusAnswered:
			stats.Answered++
		}
	}
	return stats, nil
}

func (m *MemStore) AddAdmin(ctx context.Context, userID int64, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.admins[userID] = models.Admin{UserID: userID, Username: username}
	return nil
}

func (m *MemStore) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.admins[userID]
	return ok, nil
}

func (m *MemStore) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	admins := make([]models.Admin, 0, len(m.admins))
	for _, a := range m.admins {
		admins = append(admins, a)
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].UserID < admins[j].UserID })
	return admins, nil
}

// Close does nothing for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
