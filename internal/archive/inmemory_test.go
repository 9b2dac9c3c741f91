package archive

import (
	"context"
	"testing"
)

func TestInMemoryStoreSaveAndList(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	turns := []TurnRecord{
		{SessionID: "s1", Role: "user", Content: "hello"},
		{SessionID: "s1", Role: "assistant", Content: "hi"},
		{SessionID: "s2", Role: "user", Content: "other"},
	}
	for _, r := range turns {
		if err := s.SaveTurn(ctx, r); err != nil {
			t.Fatalf("SaveTurn() error = %v", err)
		}
	}

	got, err := s.SessionTurns(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("SessionTurns() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Content != "hello" || got[1].Content != "hi" {
		t.Fatalf("turns out of order: %+v", got)
	}
	if got[0].ID == "" || got[0].CreatedAt.IsZero() {
		t.Fatalf("missing generated fields: %+v", got[0])
	}

	limited, err := s.SessionTurns(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("SessionTurns(limit=1) error = %v", err)
	}
	if len(limited) != 1 || limited[0].Content != "hi" {
		t.Fatalf("limited = %+v, want newest turn", limited)
	}

	none, err := s.SessionTurns(ctx, "missing", 5)
	if err != nil || none != nil {
		t.Fatalf("missing session = %+v, %v", none, err)
	}
}
