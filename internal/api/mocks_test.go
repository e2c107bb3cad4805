package api

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tasknest/tasknest-api/internal/domain"
	"github.com/tasknest/tasknest-api/internal/service/auth"
	"github.com/tasknest/tasknest-api/internal/store"
)

// mockUserStore is an in-memory store.UserStore.
type mockUserStore struct {
	users       map[uuid.UUID]*domain.User
	resetHashes map[uuid.UUID]string
	resetExpiry map[uuid.UUID]time.Time
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		users:       make(map[uuid.UUID]*domain.User),
		resetHashes: make(map[uuid.UUID]string),
		resetExpiry: make(map[uuid.UUID]time.Time),
	}
}

func (m *mockUserStore) Create(_ context.Context, user *domain.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
		if u.Username == user.Username {
			return store.ErrUsernameExists
		}
	}
	// Mimic the real store: hash is opaque, plaintext is dropped.
	if user.Password != "" {
		user.HashedPassword = "hashed:" + user.Password
		user.Password = ""
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) Update(_ context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	if user.Password != "" {
		user.HashedPassword = "hashed:" + user.Password
		user.Password = ""
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserStore) SetResetToken(_ context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	m.resetHashes[id] = tokenHash
	m.resetExpiry[id] = expiresAt
	return nil
}

func (m *mockUserStore) GetByValidResetToken(_ context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	for id, hash := range m.resetHashes {
		if hash == tokenHash && m.resetExpiry[id].After(now) {
			return m.GetByID(context.Background(), id)
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) ClearResetToken(_ context.Context, id uuid.UUID) error {
	delete(m.resetHashes, id)
	delete(m.resetExpiry, id)
	return nil
}

func (m *mockUserStore) WithTx(_ *sql.Tx) store.UserStore { return m }

// mockTaskStore is an in-memory store.TaskStore covering what the handler
// tests exercise.
type mockTaskStore struct {
	tasks map[uuid.UUID]*domain.Task
}

func newMockTaskStore() *mockTaskStore {
	return &mockTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (m *mockTaskStore) Create(_ context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *mockTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTaskStore) Update(_ context.Context, task *domain.Task) error {
	if _, ok := m.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *mockTaskStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskStore) List(_ context.Context, params store.ListTasksParams) ([]*domain.Task, int, error) {
	var out []*domain.Task
	for _, t := range m.tasks {
		if t.UserID != params.UserID {
			continue
		}
		if params.Status != "" && t.Status != params.Status {
			continue
		}
		if params.Priority != "" && t.Priority != params.Priority {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockTaskStore) FindRecurringActive(_ context.Context, _ time.Time) ([]*domain.Task, error) {
	return nil, nil
}

func (m *mockTaskStore) FindReminderCandidates(_ context.Context) ([]*domain.Task, error) {
	return nil, nil
}

func (m *mockTaskStore) ClaimReminder(_ context.Context, id uuid.UUID) (bool, error) {
	t, ok := m.tasks[id]
	if !ok {
		return false, store.ErrTaskNotFound
	}
	if t.ReminderSent {
		return false, nil
	}
	t.ReminderSent = true
	return true, nil
}

func (m *mockTaskStore) ReleaseReminder(_ context.Context, id uuid.UUID) (bool, error) {
	t, ok := m.tasks[id]
	if !ok {
		return false, store.ErrTaskNotFound
	}
	if !t.ReminderSent {
		return false, nil
	}
	t.ReminderSent = false
	return true, nil
}

func (m *mockTaskStore) WithTx(_ *sql.Tx) store.TaskStore { return m }

// mockSubtaskStore is an in-memory store.SubtaskStore.
type mockSubtaskStore struct {
	subtasks map[uuid.UUID]*domain.Subtask
}

func newMockSubtaskStore() *mockSubtaskStore {
	return &mockSubtaskStore{subtasks: make(map[uuid.UUID]*domain.Subtask)}
}

func (m *mockSubtaskStore) Create(_ context.Context, s *domain.Subtask) error {
	cp := *s
	m.subtasks[s.ID] = &cp
	return nil
}

func (m *mockSubtaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Subtask, error) {
	s, ok := m.subtasks[id]
	if !ok {
		return nil, store.ErrSubtaskNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSubtaskStore) Update(_ context.Context, s *domain.Subtask) error {
	if _, ok := m.subtasks[s.ID]; !ok {
		return store.ErrSubtaskNotFound
	}
	cp := *s
	m.subtasks[s.ID] = &cp
	return nil
}

func (m *mockSubtaskStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.subtasks[id]; !ok {
		return store.ErrSubtaskNotFound
	}
	delete(m.subtasks, id)
	return nil
}

func (m *mockSubtaskStore) List(_ context.Context, params store.ListSubtasksParams) ([]*domain.Subtask, int, error) {
	var out []*domain.Subtask
	for _, s := range m.subtasks {
		if s.ParentTaskID != params.ParentTaskID {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockSubtaskStore) NextSortOrder(_ context.Context, parentTaskID uuid.UUID) (int, error) {
	next := 0
	for _, s := range m.subtasks {
		if s.ParentTaskID == parentTaskID && s.SortOrder >= next {
			next = s.SortOrder + 1
		}
	}
	return next, nil
}

func (m *mockSubtaskStore) WithTx(_ *sql.Tx) store.SubtaskStore { return m }

// mockJWTService issues transparent tokens so tests can mint them directly.
type mockJWTService struct{}

func (mockJWTService) GenerateToken(_ context.Context, userID uuid.UUID) (string, error) {
	return "access:" + userID.String(), nil
}

func (mockJWTService) GenerateRefreshToken(_ context.Context, userID uuid.UUID) (string, error) {
	return "refresh:" + userID.String(), nil
}

func (mockJWTService) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	return parseMockToken(token, "access:")
}

func (mockJWTService) ValidateRefreshToken(_ context.Context, token string) (*auth.Claims, error) {
	return parseMockToken(token, "refresh:")
}

func parseMockToken(token, prefix string) (*auth.Claims, error) {
	if !strings.HasPrefix(token, prefix) {
		return nil, auth.ErrInvalidToken
	}
	id, err := uuid.Parse(strings.TrimPrefix(token, prefix))
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: id}, nil
}

// mockPasswordVerifier compares against the "hashed:" scheme the mock user
// store writes.
type mockPasswordVerifier struct{}

func (mockPasswordVerifier) Compare(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return fmt.Errorf("password mismatch")
	}
	return nil
}

// mockResetMailer records outgoing reset mail.
type mockResetMailer struct {
	sent []string
}

func (m *mockResetMailer) Send(_ context.Context, to, _, _ string) error {
	m.sent = append(m.sent, to)
	return nil
}
