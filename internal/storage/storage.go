package storage

import (
	"context"
	"errors"

	"supportbot/internal/models"
)

// ErrNotFound is returned when a question does not exist, or is no longer in
// the pending state for operations that require it.
var ErrNotFound = errors.New("question not found")

// ErrInvalidStatus is returned by SetStatus for a non-terminal target status.
// Regressing a question back to pending is never permitted.
var ErrInvalidStatus = errors.New("status is not terminal")

// Store defines the interface for question and admin persistence.
//
// CreateQuestion assigns the next ID from the store's counter. The counter is
// initialized to max(existing ID)+1 when the store is opened and can be
// rewound to 1 with ResetCounter; creating over a still-existing ID after a
// reset overwrites that record. Every mutation is persisted before the call
// returns.
type Store interface {
	// Question operations
	CreateQuestion(ctx context.Context, userID int64, username, body string) (int64, error)
	GetQuestion(ctx context.Context, id int64) (*models.Question, error)
	// ListPending returns pending questions newest first.
	ListPending(ctx context.Context) ([]models.Question, error)
	// SetAnswered records the answer and moves the question to answered.
	// Returns ErrNotFound unless the question exists and is still pending.
	SetAnswered(ctx context.Context, id int64, answer string) error
	// SetStatus moves a pending question to a terminal status (closed, spam).
	// Returns ErrNotFound unless the question exists and is still pending.
	SetStatus(ctx context.Context, id int64, status models.Status) error
	DeleteQuestion(ctx context.Context, id int64) error
	// ResetCounter rewinds ID allocation to 1. Destructive if lower IDs are
	// still present in storage.
	ResetCounter(ctx context.Context) error
	Stats(ctx context.Context) (models.Stats, error)

	// Admin operations
	AddAdmin(ctx context.Context, userID int64, username string) error
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	ListAdmins(ctx context.Context) ([]models.Admin, error)

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
