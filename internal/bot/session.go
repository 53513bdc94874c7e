package bot

import "sync"

// sessions tracks, per admin, the question they are currently replying to.
// One mutable slot per admin: Begin overwrites whatever was open, so starting
// to answer a new question silently abandons an unfinished one. Sessions are
// never persisted; an open session is lost on restart and the admin simply
// presses Answer again.
type sessions struct {
	mu   sync.Mutex
	open map[int64]int64 // admin ID -> question ID
}

func newSessions() *sessions {
	return &sessions{open: make(map[int64]int64)}
}

// Begin opens a reply session, replacing any prior one for that admin.
func (s *sessions) Begin(adminID, questionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open[adminID] = questionID
}

// Current returns the question the admin is replying to, if any.
func (s *sessions) Current(adminID int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.open[adminID]
	return id, ok
}

// Clear drops the admin's open session.
func (s *sessions) Clear(adminID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.open, adminID)
}
