package flow

import (
	"errors"
	"testing"

	"github.com/sagi-ba/photo-to-photo/internal/domain"
)

func TestSessionStoreCreateAndView(t *testing.T) {
	st := NewSessionStore()
	s := st.Create()
	if s.ID == "" {
		t.Fatal("empty session id")
	}
	if s.CurrentPage != domain.PageUpload {
		t.Fatalf("new session page = %q, want upload", s.CurrentPage)
	}

	got, ok := st.View(s.ID)
	if !ok {
		t.Fatal("session not found after create")
	}
	if got.ID != s.ID {
		t.Fatalf("viewed id = %q, want %q", got.ID, s.ID)
	}

	if _, ok := st.View("missing"); ok {
		t.Fatal("unexpected hit for unknown id")
	}
}

func TestSessionStoreUpdate(t *testing.T) {
	st := NewSessionStore()
	s := st.Create()

	updated, err := st.Update(s.ID, func(live *domain.Session) error {
		live.Prompt = "a red bicycle"
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Prompt != "a red bicycle" {
		t.Fatalf("prompt = %q", updated.Prompt)
	}

	viewed, _ := st.View(s.ID)
	if viewed.Prompt != "a red bicycle" {
		t.Fatal("mutation not persisted")
	}
}

func TestSessionStoreUpdateKeepsMutationsOnError(t *testing.T) {
	st := NewSessionStore()
	s := st.Create()

	sentinel := errors.New("transition refused")
	updated, err := st.Update(s.ID, func(live *domain.Session) error {
		live.CurrentPage = domain.PageUpload
		live.Prompt = "kept"
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}
	if updated.Prompt != "kept" {
		t.Fatal("returned copy missing mutation")
	}

	viewed, _ := st.View(s.ID)
	if viewed.Prompt != "kept" {
		t.Fatal("mutation discarded on error")
	}
}

func TestSessionStoreUpdateUnknownID(t *testing.T) {
	st := NewSessionStore()
	_, err := st.Update("missing", func(*domain.Session) error { return nil })
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
