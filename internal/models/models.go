package models

import "time"

// Status is the lifecycle state of a question. Transitions are forward-only:
// a question starts as pending and moves to exactly one terminal state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAnswered Status = "answered"
	StatusClosed   Status = "closed"
	StatusSpam     Status = "spam"
)

// Terminal reports whether no further transitions are permitted.
func (s Status) Terminal() bool {
	return s == StatusAnswered || s == StatusClosed || s == StatusSpam
}

// Question is a single user question relayed to the admin chat.
type Question struct {
	ID         int64      `gorm:"primary_key" json:"id"`
	UserID     int64      `json:"user_id"`
	Username   string     `gorm:"type:varchar(64)" json:"username"`
	Body       string     `gorm:"type:text" json:"body"`
	Status     Status     `gorm:"type:varchar(16)" json:"status"`
	Answer     string     `gorm:"type:text" json:"answer,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
}

// Admin is an authorized admin identity.
type Admin struct {
	UserID   int64  `gorm:"primary_key" json:"user_id"`
	Username string `gorm:"type:varchar(64)" json:"username"`
}

// Stats are read-only aggregates over the question store.
type Stats struct {
	Total    int64
	Pending  int64
	Answered int64
	Admins   int64
}
