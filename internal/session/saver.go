package session

import (
	"sync"
	"time"
)

// Saver coalesces rapid save requests into one delayed durable write. It
// owns a single pending timer with cancel-and-reschedule semantics: a
// Schedule within the delay window of a pending write replaces it.
type Saver struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	save  func() error
}

func NewSaver(delay time.Duration, save func() error) *Saver {
	return &Saver{delay: delay, save: save}
}

// Schedule arms (or re-arms) the pending write.
func (s *Saver) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		_ = s.save()
	})
}

// Flush cancels any pending write and saves synchronously.
func (s *Saver) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.save()
}
