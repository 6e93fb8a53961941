package session

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type memPersister struct {
	mu       sync.Mutex
	sessions map[string]*Session
	saves    int
	loadErr  error
	saveErr  error
}

func (m *memPersister) Load() (map[string]*Session, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.sessions, nil
}

func (m *memPersister) Save(s map[string]*Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sessions = s
	m.saves++
	return nil
}

func newTestStore() (*Store, *memPersister) {
	p := &memPersister{}
	return NewStore(p, 10*time.Millisecond), p
}

func TestHistoryBound(t *testing.T) {
	s := newSession()
	for i := 0; i < 2*MaxHistory; i++ {
		s.AppendHistory(RoleUser, fmt.Sprintf("msg %d", i))
	}
	if len(s.History) != MaxHistory {
		t.Fatalf("expected %d entries, got %d", MaxHistory, len(s.History))
	}
	// The most recent MaxHistory entries, in original order.
	for i, m := range s.History {
		want := fmt.Sprintf("msg %d", MaxHistory+i)
		if m.Content != want {
			t.Errorf("entry %d: expected %q, got %q", i, want, m.Content)
		}
	}
}

func TestFlagsIdempotent(t *testing.T) {
	s := newSession()
	s.AddFlag("oferta-Segunda-feira-01/01/2026")
	s.AddFlag("oferta-Segunda-feira-01/01/2026")
	if len(s.Flags) != 1 {
		t.Fatalf("expected 1 flag, got %d", len(s.Flags))
	}
}

func TestGetCreatesDefault(t *testing.T) {
	store, _ := newTestStore()
	sess := store.Get("5511999990000@c.us")
	if sess.State != StateIdle {
		t.Errorf("expected IDLE, got %s", sess.State)
	}
	if len(sess.History) != 0 || len(sess.Flags) != 0 || sess.Name != "" {
		t.Errorf("expected empty default session, got %+v", sess)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 session in store, got %d", store.Len())
	}
}

func TestGetIdempotent(t *testing.T) {
	store, _ := newTestStore()
	a := store.Get("u@c.us")
	b := store.Get("u@c.us")
	a.LastActivity, b.LastActivity = 0, 0
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two Gets differ: %+v vs %+v", a, b)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	store, _ := newTestStore()
	a := store.Get("u@c.us")
	a.Name = "Hacked"
	a.AppendHistory(RoleUser, "x")
	b := store.Get("u@c.us")
	if b.Name != "" || len(b.History) != 0 {
		t.Fatalf("mutating a Get result leaked into the store: %+v", b)
	}
}

func TestUpdateMergesConcurrentFields(t *testing.T) {
	store, _ := newTestStore()
	store.Get("u@c.us")
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		store.Update("u@c.us", func(s *Session) { s.Name = "Maria" })
	}()
	go func() {
		defer wg.Done()
		store.Update("u@c.us", func(s *Session) { s.State = StateAwaitingName })
	}()
	wg.Wait()
	sess := store.Get("u@c.us")
	if sess.Name != "Maria" || sess.State != StateAwaitingName {
		t.Fatalf("lost a concurrent field update: %+v", sess)
	}
}

func TestLoadFailureDegradesToEmpty(t *testing.T) {
	p := &memPersister{loadErr: fmt.Errorf("disk on fire")}
	store := NewStore(p, time.Millisecond)
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d sessions", store.Len())
	}
	// The store still works after a failed load.
	store.Get("u@c.us")
	if store.Len() != 1 {
		t.Fatalf("store unusable after degraded load")
	}
}

func TestFlushWritesSynchronously(t *testing.T) {
	store, p := newTestStore()
	store.Update("u@c.us", func(s *Session) { s.Name = "Ana" })
	if err := store.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if p.sessions["u@c.us"] == nil || p.sessions["u@c.us"].Name != "Ana" {
		t.Fatalf("flush did not persist the session: %+v", p.sessions)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data.json")
	p := NewFilePersister(path)

	store := NewStore(p, time.Millisecond)
	store.Update("a@c.us", func(s *Session) {
		s.Name = "João"
		s.State = StateHumanRequested
		s.AppendHistory(RoleUser, "oi")
		s.AppendHistory(RoleAssistant, "olá!")
		s.AddFlag("oferta-Sábado-02/05/2026")
	})
	store.Update("b@c.us", func(s *Session) { s.State = StateAwaitingName })
	if err := store.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	reloaded := NewStore(NewFilePersister(path), time.Millisecond)
	if !reflect.DeepEqual(store.snapshot(), reloaded.snapshot()) {
		t.Fatalf("round-trip mismatch:\nbefore: %+v\nafter:  %+v", store.snapshot(), reloaded.snapshot())
	}
}

func TestCorruptFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewStore(NewFilePersister(path), time.Millisecond)
	if store.Len() != 0 {
		t.Fatalf("expected empty store from corrupt file, got %d", store.Len())
	}
}

func TestMissingFileIsEmptyStore(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "nope", "user_data.json"))
	sessions, err := p.Load()
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected empty map, got %d", len(sessions))
	}
}

func TestSaverCoalesces(t *testing.T) {
	var saves int32
	s := NewSaver(30*time.Millisecond, func() error {
		atomic.AddInt32(&saves, 1)
		return nil
	})
	s.Schedule()
	s.Schedule()
	s.Schedule()
	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&saves); got != 1 {
		t.Fatalf("expected 1 coalesced save, got %d", got)
	}
}

func TestSaverFlushCancelsPending(t *testing.T) {
	var saves int32
	s := NewSaver(time.Hour, func() error {
		atomic.AddInt32(&saves, 1)
		return nil
	})
	s.Schedule()
	if err := s.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if got := atomic.LoadInt32(&saves); got != 1 {
		t.Fatalf("expected exactly 1 save from flush, got %d", got)
	}
}
