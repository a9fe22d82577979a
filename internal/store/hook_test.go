package store

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestHookRepository_CRUD(t *testing.T) {
	s := newTestStore(t)
	repo := s.Hooks()

	hook := &Hook{
		Command:    "save",
		PluginName: "clipboard",
		ActionName: "copy",
		Enabled:    true,
	}
	if err := repo.Create(hook); err != nil {
		t.Fatalf("failed to create hook: %v", err)
	}
	if hook.ID == "" {
		t.Fatal("hook ID should be assigned")
	}

	got, err := repo.GetByID(hook.ID)
	if err != nil {
		t.Fatalf("failed to get hook: %v", err)
	}
	if got.Command != "save" || got.PluginName != "clipboard" || got.ActionName != "copy" {
		t.Errorf("got %+v", got)
	}
	if string(got.Config) != "{}" {
		t.Errorf("Config = %s, want {}", got.Config)
	}
	if !got.Enabled {
		t.Error("hook should be enabled")
	}

	got.Config = json.RawMessage(`{"target":"primary"}`)
	got.Enabled = false
	if err := repo.Update(got); err != nil {
		t.Fatalf("failed to update hook: %v", err)
	}

	updated, err := repo.GetByID(hook.ID)
	if err != nil {
		t.Fatalf("failed to get hook: %v", err)
	}
	if updated.Enabled {
		t.Error("hook should be disabled after update")
	}
	if string(updated.Config) != `{"target":"primary"}` {
		t.Errorf("Config = %s", updated.Config)
	}

	if err := repo.Delete(hook.ID); err != nil {
		t.Fatalf("failed to delete hook: %v", err)
	}
	if _, err := repo.GetByID(hook.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestHookRepository_RejectsUnknownCommand(t *testing.T) {
	s := newTestStore(t)

	err := s.Hooks().Create(&Hook{Command: "launch", PluginName: "p", ActionName: "a"})
	if err == nil {
		t.Error("expected check constraint to reject unknown command")
	}
}

func TestHookRepository_ListByCommand(t *testing.T) {
	s := newTestStore(t)
	repo := s.Hooks()

	hooks := []*Hook{
		{Command: "save", PluginName: "clipboard", ActionName: "copy", Enabled: true},
		{Command: "save", PluginName: "notify", ActionName: "send", Enabled: false},
		{Command: "clear", PluginName: "clipboard", ActionName: "clear", Enabled: true},
	}
	for _, h := range hooks {
		if err := repo.Create(h); err != nil {
			t.Fatalf("failed to create hook: %v", err)
		}
	}

	save, err := repo.ListByCommand("save")
	if err != nil {
		t.Fatalf("failed to list hooks: %v", err)
	}
	if len(save) != 1 || save[0].PluginName != "clipboard" {
		t.Errorf("expected only the enabled save hook, got %d", len(save))
	}

	all, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list hooks: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 hooks, got %d", len(all))
	}
}

func TestHookRepository_NotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Hooks()

	if err := repo.Update(&Hook{ID: "missing", Command: "save"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}
}
