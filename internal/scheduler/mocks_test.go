package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tasknest/tasknest-api/internal/domain"
	"github.com/tasknest/tasknest-api/internal/store"
)

// mockTaskSource is an in-memory stand-in for the task store slices the
// scheduler consumes. Its claim bookkeeping is guarded by a mutex so the
// concurrency tests exercise the real compare-and-set semantics.
type mockTaskSource struct {
	mu         sync.Mutex
	templates  []*domain.Task
	candidates []*domain.Task
	created    []*domain.Task
	claimed    map[uuid.UUID]bool

	findErr   error
	createErr func(task *domain.Task) error
}

func newMockTaskSource() *mockTaskSource {
	return &mockTaskSource{claimed: make(map[uuid.UUID]bool)}
}

func (m *mockTaskSource) FindRecurringActive(_ context.Context, _ time.Time) ([]*domain.Task, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.templates, nil
}

func (m *mockTaskSource) Create(_ context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		if err := m.createErr(task); err != nil {
			return err
		}
	}
	for _, existing := range m.created {
		if existing.OriginTaskID != nil && task.OriginTaskID != nil &&
			*existing.OriginTaskID == *task.OriginTaskID &&
			existing.DueDate.Equal(*task.DueDate) {
			return store.ErrOccurrenceExists
		}
	}
	m.created = append(m.created, task)
	return nil
}

func (m *mockTaskSource) FindReminderCandidates(_ context.Context) ([]*domain.Task, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.candidates, nil
}

func (m *mockTaskSource) ClaimReminder(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimed[id] {
		return false, nil
	}
	m.claimed[id] = true
	return true, nil
}

func (m *mockTaskSource) ReleaseReminder(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.claimed[id] {
		return false, nil
	}
	delete(m.claimed, id)
	return true, nil
}

func (m *mockTaskSource) createdCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

// mockUserDirectory serves users from a fixed map.
type mockUserDirectory struct {
	users map[uuid.UUID]*domain.User
}

func (m *mockUserDirectory) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

// mockNotifier records deliveries and can be told to fail.
type mockNotifier struct {
	mu      sync.Mutex
	sent    []uuid.UUID
	sendErr error
}

func (m *mockNotifier) SendReminder(_ context.Context, _ *domain.User, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, task.ID)
	return nil
}

func (m *mockNotifier) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *mockNotifier) setError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

func testUser(tz string, notifications bool) *domain.User {
	return &domain.User{
		ID:       uuid.New(),
		Email:    "owner@example.com",
		Username: "owner",
		Preferences: domain.Preferences{
			Theme:              domain.ThemeLight,
			EmailNotifications: notifications,
			Timezone:           tz,
		},
	}
}
