package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"supportbot/internal/models"
	"supportbot/internal/storage"
)

// state is the on-disk layout: one record per question, one per admin, plus
// the ID allocation counter.
type state struct {
	NextID    int64                     `json:"next_id"`
	Questions map[int64]models.Question `json:"questions"`
	Admins    map[int64]models.Admin    `json:"admins"`
}

// JSONStore is a durable question store persisted as a single JSON file. The
// whole file is rewritten synchronously on every mutation, so a mutation is on
// disk before the call returns.
type JSONStore struct {
	path string

	mu sync.Mutex
	st state
}

// Open creates a store backed by the JSON file at path. The file is created
// on the first mutation if it does not exist yet.
func Open(path string) (*JSONStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	return &JSONStore{path: path}, nil
}

// Initialize loads the state file and seeds the ID counter.
func (s *JSONStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st = state{
		NextID:    1,
		Questions: make(map[int64]models.Question),
		Admins:    make(map[int64]models.Admin),
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read state file: %w", err)
	}
	if err := json.Unmarshal(data, &s.st); err != nil {
		return fmt.Errorf("failed to parse state file %s: %w", s.path, err)
	}
	if s.st.Questions == nil {
		s.st.Questions = make(map[int64]models.Question)
	}
	if s.st.Admins == nil {
		s.st.Admins = make(map[int64]models.Admin)
	}

	// Older files may predate the counter field.
	for id := range s.st.Questions {
		if id >= s.st.NextID {
			s.st.NextID = id + 1
		}
	}
	return nil
}

// persist writes the full state to a temp file and renames it into place.
// Callers must hold s.mu.
func (s *JSONStore) persist() error {
	data, err := json.MarshalIndent(&s.st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

func (s *JSONStore) CreateQuestion(ctx context.Context, userID int64, username, body string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.st.NextID
	q := models.Question{
		ID:        id,
		UserID:    userID,
		Username:  username,
		Body:      body,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}

	prev, existed := s.st.Questions[id]
	s.st.Questions[id] = q
	s.st.NextID = id + 1
	if err := s.persist(); err != nil {
		// Roll the in-memory state back so it keeps matching the file.
		if existed {
			s.st.Questions[id] = prev
		} else {
			delete(s.st.Questions, id)
		}
		s.st.NextID = id
		return 0, err
	}
	return id, nil
}

func (s *JSONStore) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.st.Questions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &q, nil
}

// ListPending returns pending questions newest first.
func (s *JSONStore) ListPending(ctx context.Context) ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []models.Question
	for _, q := range s.st.Questions {
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

func (s *JSONStore) SetAnswered(ctx context.Context, id int64, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.st.Questions[id]
	if !ok || q.Status != models.StatusPending {
		return storage.ErrNotFound
	}
	now := time.Now()
	q.Status = models.StatusAnswered
	q.Answer = answer
	q.AnsweredAt = &now
	return s.mutateQuestion(id, q)
}

func (s *JSONStore) SetStatus(ctx context.Context, id int64, status models.Status) error {
	if !status.Terminal() {
		return storage.ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.st.Questions[id]
	if !ok || q.Status != models.StatusPending {
		return storage.ErrNotFound
	}
	q.Status = status
	return s.mutateQuestion(id, q)
}

// mutateQuestion swaps in the updated record and persists, restoring the old
// record if the write fails. Callers must hold s.mu.
func (s *JSONStore) mutateQuestion(id int64, q models.Question) error {
	prev := s.st.Questions[id]
	s.st.Questions[id] = q
	if err := s.persist(); err != nil {
		s.st.Questions[id] = prev
		return err
	}
	return nil
}

func (s *JSONStore) DeleteQuestion(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.st.Questions[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.st.Questions, id)
	if err := s.persist(); err != nil {
		s.st.Questions[id] = q
		return err
	}
	return nil
}

// ResetCounter rewinds ID allocation to 1.
func (s *JSONStore) ResetCounter(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.st.NextID
	s.st.NextID = 1
	if err := s.persist(); err != nil {
		s.st.NextID = prev
		return err
	}
	return nil
}

func (s *JSONStore) Stats(ctx context.Context) (models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.Stats{
		Total:  int64(len(s.st.Questions)),
		Admins: int64(len(s.st.Admins)),
	}
	for _, q := range s.st.Questions {
		switch q.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusAnswered:
			stats.Answered++
		}
	}
	return stats, nil
}

func (s *JSONStore) AddAdmin(ctx context.Context, userID int64, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.st.Admins[userID]
	s.st.Admins[userID] = models.Admin{UserID: userID, Username: username}
	if err := s.persist(); err != nil {
		if existed {
			s.st.Admins[userID] = prev
		} else {
			delete(s.st.Admins, userID)
		}
		return err
	}
	return nil
}

func (s *JSONStore) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.st.Admins[userID]
	return ok, nil
}

func (s *JSONStore) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	admins := make([]models.Admin, 0, len(s.st.Admins))
	for _, a := range s.st.Admins {
		admins = append(admins, a)
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].UserID < admins[j].UserID })
	return admins, nil
}

// Close does nothing; every mutation is already on disk.
func (s *JSONStore) Close() error {
	return nil
}
