package store

import (
	"errors"
	"testing"
	"time"
)

func TestSessionRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{Text: "hello", Layout: "QWERTY", Theme: "neon", Accuracy: 100}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	if sess.ID == "" {
		t.Error("session ID should be assigned")
	}
	if sess.StartedAt.IsZero() {
		t.Error("StartedAt should be set")
	}

	got, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.Text != "hello" || got.Layout != "QWERTY" || got.Theme != "neon" {
		t.Errorf("got %+v, want text=hello layout=QWERTY theme=neon", got)
	}
	if got.Accuracy != 100 {
		t.Errorf("Accuracy = %f, want 100", got.Accuracy)
	}
}

func TestSessionRepository_CreateKeepsExplicitID(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	if err := repo.Create(&Session{ID: "fixed-id"}); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if _, err := repo.GetByID("fixed-id"); err != nil {
		t.Errorf("expected session with explicit ID, got error: %v", err)
	}

	if err := repo.Create(&Session{ID: "fixed-id"}); err == nil {
		t.Error("expected duplicate ID to fail")
	}
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Sessions().GetByID("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_Update(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{Text: "hel"}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	sess.Text = "hello world"
	sess.Chars = 11
	sess.Words = 2
	sess.Backspaces = 1
	sess.Keystrokes = 12
	sess.WPM = 24.5
	sess.Accuracy = 91.6
	if err := repo.Update(sess); err != nil {
		t.Fatalf("failed to update session: %v", err)
	}

	got, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.Text != "hello world" {
		t.Errorf("Text = %q, want %q", got.Text, "hello world")
	}
	if got.Chars != 11 || got.Words != 2 || got.Backspaces != 1 || got.Keystrokes != 12 {
		t.Errorf("counters = %d/%d/%d/%d, want 11/2/1/12", got.Chars, got.Words, got.Backspaces, got.Keystrokes)
	}
	if got.WPM != 24.5 {
		t.Errorf("WPM = %f, want 24.5", got.WPM)
	}
}

func TestSessionRepository_Update_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.Sessions().Update(&Session{ID: "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_LatestAndList(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	if _, err := repo.Latest(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on empty store, got %v", err)
	}

	first := &Session{Text: "first"}
	if err := repo.Create(first); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second := &Session{Text: "second"}
	if err := repo.Create(second); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	latest, err := repo.Latest()
	if err != nil {
		t.Fatalf("failed to get latest session: %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("latest = %q, want second session", latest.Text)
	}

	time.Sleep(5 * time.Millisecond)
	first.Text = "first, edited"
	if err := repo.Update(first); err != nil {
		t.Fatalf("failed to update session: %v", err)
	}

	latest, err = repo.Latest()
	if err != nil {
		t.Fatalf("failed to get latest session: %v", err)
	}
	if latest.ID != first.ID {
		t.Errorf("latest = %q, want the updated first session", latest.Text)
	}

	all, err := repo.List(0)
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(all))
	}
	if all[0].ID != first.ID {
		t.Error("list should be ordered by most recent update")
	}

	limited, err := repo.List(1)
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 session with limit, got %d", len(limited))
	}
}

func TestSessionRepository_DeleteCascadesKeystrokes(t *testing.T) {
	s := newTestStore(t)

	sess := &Session{Text: "hi"}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	now := time.Now()
	err := s.Keystrokes().Append(sess.ID, []Keystroke{
		{Token: "h", TypedAt: now},
		{Token: "i", TypedAt: now.Add(time.Second)},
	})
	if err != nil {
		t.Fatalf("failed to append keystrokes: %v", err)
	}

	if err := s.Sessions().Delete(sess.ID); err != nil {
		t.Fatalf("failed to delete session: %v", err)
	}

	if _, err := s.Sessions().GetByID(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	n, err := s.Keystrokes().CountBySession(sess.ID)
	if err != nil {
		t.Fatalf("failed to count keystrokes: %v", err)
	}
	if n != 0 {
		t.Errorf("expected keystrokes to be deleted with their session, got %d", n)
	}

	if err := s.Sessions().Delete(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}
