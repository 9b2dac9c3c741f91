package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

var ErrNotFound = errors.New("session not found")

// Info is the cross-connection view of one relay session. The connection
// itself owns the pipeline; this index only tracks liveness so REST handlers
// can validate ids and idle connections can be reaped.
type Info struct {
	ID                string    `json:"session_id"`
	Status            Status    `json:"status"`
	InterruptionCount int       `json:"interruption_count"`
	StartedAt         time.Time `json:"started_at"`
	LastActivityAt    time.Time `json:"last_activity_at"`
}

type Manager struct {
	mu                sync.RWMutex
	sessions          map[string]*Info
	inactivityTimeout time.Duration
	onExpire          func(Info)
}

func NewManager(inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 2 * time.Minute
	}
	return &Manager{
		sessions:          make(map[string]*Info),
		inactivityTimeout: inactivityTimeout,
	}
}

// SetExpireHook installs a callback invoked for each session the janitor
// ends. Set before StartJanitor.
func (m *Manager) SetExpireHook(hook func(Info)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// Register indexes a newly accepted connection under its session id.
func (m *Manager) Register(sessionID string) Info {
	now := time.Now().UTC()
	info := &Info{
		ID:             sessionID,
		Status:         StatusActive,
		StartedAt:      now,
		LastActivityAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = info
	return *info
}

func (m *Manager) Get(sessionID string) (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.sessions[sessionID]
	if !ok {
		return Info{}, ErrNotFound
	}
	return *info, nil
}

// Touch refreshes the inactivity clock; called on every inbound frame.
func (m *Manager) Touch(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	info.LastActivityAt = time.Now().UTC()
	return nil
}

// Interrupt records one barge-in against the session.
func (m *Manager) Interrupt(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	info.InterruptionCount++
	info.LastActivityAt = time.Now().UTC()
	return nil
}

// End marks the session ended and drops it from the index.
func (m *Manager) End(sessionID string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.sessions[sessionID]
	if !ok {
		return Info{}, ErrNotFound
	}
	info.Status = StatusEnded
	info.LastActivityAt = time.Now().UTC()
	delete(m.sessions, sessionID)
	return *info, nil
}

// IDs lists the currently registered session ids.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	return out
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, info := range m.sessions {
		if info.Status == StatusActive {
			count++
		}
	}
	return count
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) expireInactive() {
	now := time.Now().UTC()
	var expired []Info

	m.mu.Lock()
	for id, info := range m.sessions {
		if info.Status != StatusActive {
			continue
		}
		if now.Sub(info.LastActivityAt) < m.inactivityTimeout {
			continue
		}
		info.Status = StatusEnded
		info.LastActivityAt = now
		expired = append(expired, *info)
		delete(m.sessions, id)
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, info := range expired {
			hook(info)
		}
	}
}
