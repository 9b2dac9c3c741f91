package session

import (
	"context"
	"testing"
	"time"
)

func TestManagerRegisterGetEnd(t *testing.T) {
	m := NewManager(time.Minute)
	m.Register("s1")

	got, err := m.Get("s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != StatusActive {
		t.Fatalf("status = %q, want %q", got.Status, StatusActive)
	}
	if m.ActiveCount() != 1 {
		t.Fatalf("ActiveCount() = %d, want 1", m.ActiveCount())
	}

	ended, err := m.End("s1")
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if ended.Status != StatusEnded {
		t.Fatalf("ended status = %q, want %q", ended.Status, StatusEnded)
	}
	if _, err := m.Get("s1"); err != ErrNotFound {
		t.Fatalf("Get() after End error = %v, want ErrNotFound", err)
	}
}

func TestManagerInterruptCounts(t *testing.T) {
	m := NewManager(time.Minute)
	m.Register("s1")
	if err := m.Interrupt("s1"); err != nil {
		t.Fatalf("Interrupt() error = %v", err)
	}
	if err := m.Interrupt("s1"); err != nil {
		t.Fatalf("Interrupt() error = %v", err)
	}

	got, err := m.Get("s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.InterruptionCount != 2 {
		t.Fatalf("InterruptionCount = %d, want 2", got.InterruptionCount)
	}
}

func TestManagerJanitorExpiresInactive(t *testing.T) {
	m := NewManager(30 * time.Millisecond)
	m.Register("s1")

	expired := make(chan Info, 1)
	m.SetExpireHook(func(info Info) { expired <- info })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartJanitor(ctx, 10*time.Millisecond)

	select {
	case info := <-expired:
		if info.ID != "s1" || info.Status != StatusEnded {
			t.Fatalf("expired = %+v", info)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("janitor never expired the idle session")
	}

	if _, err := m.Get("s1"); err != ErrNotFound {
		t.Fatalf("Get() after expiry error = %v, want ErrNotFound", err)
	}
}

func TestManagerTouchKeepsAlive(t *testing.T) {
	m := NewManager(time.Minute)
	m.Register("s1")
	before, _ := m.Get("s1")

	time.Sleep(5 * time.Millisecond)
	if err := m.Touch("s1"); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	after, _ := m.Get("s1")
	if !after.LastActivityAt.After(before.LastActivityAt) {
		t.Fatalf("Touch() did not advance LastActivityAt")
	}

	if err := m.Touch("missing"); err != ErrNotFound {
		t.Fatalf("Touch(missing) error = %v, want ErrNotFound", err)
	}
}
