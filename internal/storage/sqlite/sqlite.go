package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"supportbot/internal/models"
	"supportbot/internal/storage"
	"supportbot/migrations"
)

// SQLiteStore is the durable question store backed by an embedded SQLite
// database. The schema is managed by the embedded goose migrations.
type SQLiteStore struct {
	db *gorm.DB

	mu     sync.Mutex
	nextID int64
}

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Initialize applies pending migrations and seeds the ID counter from the
// highest stored question ID.
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(s.db.DB(), "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var max int64
	row := s.db.Model(&models.Question{}).Select("COALESCE(MAX(id), 0)").Row()
	if err := row.Scan(&max); err != nil {
		return fmt.Errorf("failed to read max question id: %w", err)
	}

	s.mu.Lock()
	s.nextID = max + 1
	s.mu.Unlock()
	return nil
}

// CreateQuestion inserts a new pending question under the next counter value.
// After a counter reset the ID may collide with a stored record; the old
// record is overwritten.
func (s *SQLiteStore) CreateQuestion(ctx context.Context, userID int64, username, body string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := models.Question{
		ID:        s.nextID,
		UserID:    userID,
		Username:  username,
		Body:      body,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	if err := tx.Where("id = ?", q.ID).Delete(&models.Question{}).Error; err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to clear question id %d: %w", q.ID, err)
	}
	if err := tx.Create(&q).Error; err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to create question: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return 0, fmt.Errorf("failed to commit question: %w", err)
	}

	s.nextID = q.ID + 1
	return q.ID, nil
}

func (s *SQLiteStore) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	var q models.Question
	err := s.db.Where("id = ?", id).First(&q).Error
	if err == gorm.ErrRecordNotFound {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question %d: %w", id, err)
	}
	return &q, nil
}

// ListPending returns pending questions newest first.
func (s *SQLiteStore) ListPending(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	err := s.db.Where("status = ?", models.StatusPending).
		Order("created_at desc, id desc").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending questions: %w", err)
	}
	return questions, nil
}

func (s *SQLiteStore) SetAnswered(ctx context.Context, id int64, answer string) error {
	now := time.Now()
	res := s.db.Model(&models.Question{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":      models.StatusAnswered,
			"answer":      answer,
			"answered_at": &now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to set question %d answered: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SetStatus(ctx context.Context, id int64, status models.Status) error {
	if !status.Terminal() {
		return storage.ErrInvalidStatus
	}
	res := s.db.Model(&models.Question{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to set question %d status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteQuestion(ctx context.Context, id int64) error {
	res := s.db.Where("id = ?", id).Delete(&models.Question{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete question %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ResetCounter rewinds ID allocation to 1. Stored records are untouched; the
// next create overwrites whatever still lives under the reissued ID.
func (s *SQLiteStore) ResetCounter(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID = 1
	return nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	counts := []struct {
		dst    *int64
		status models.Status
	}{
		{&stats.Pending, models.StatusPending},
		{&stats.Answered, models.StatusAnswered},
	}

	if err := s.db.Model(&models.Question{}).Count(&stats.Total).Error; err != nil {
		return stats, fmt.Errorf("failed to count questions: %w", err)
	}
	for _, c := range counts {
		if err := s.db.Model(&models.Question{}).Where("status = ?", c.status).Count(c.dst).Error; err != nil {
			return stats, fmt.Errorf("failed to count %s questions: %w", c.status, err)
		}
	}
	if err := s.db.Model(&models.Admin{}).Count(&stats.Admins).Error; err != nil {
		return stats, fmt.Errorf("failed to count admins: %w", err)
	}
	return stats, nil
}

func (s *SQLiteStore) AddAdmin(ctx context.Context, userID int64, username string) error {
	admin := models.Admin{UserID: userID, Username: username}
	err := s.db.Where(models.Admin{UserID: userID}).
		Assign(models.Admin{Username: username}).
		FirstOrCreate(&admin).Error
	if err != nil {
		return fmt.Errorf("failed to add admin %d: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := s.db.Model(&models.Admin{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check admin %d: %w", userID, err)
	}
	return count > 0, nil
}

func (s *SQLiteStore) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	var admins []models.Admin
	if err := s.db.Order("user_id").Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
