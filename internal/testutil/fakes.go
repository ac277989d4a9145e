// Package testutil provides in-memory stand-ins for the PostgreSQL
// repositories.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"hackr_api/internal/common"
	"hackr_api/internal/domain/model"
)

type UserStore struct {
	mu    sync.Mutex
	users map[string]model.User
	// Err, when set, is returned by every call.
	Err error
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]model.User)}
}

func (s *UserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *UserStore) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) ExistsWithRole(_ context.Context, role string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	for _, u := range s.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes a user, as if the account was dropped behind a live session.
func (s *UserStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// CountRole returns how many stored users have role.
func (s *UserStore) CountRole(role string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.users {
		if u.Role == role {
			n++
		}
	}
	return n
}

type AccessLogStore struct {
	mu      sync.Mutex
	entries []model.AccessLog
	nextID  int64
	Err     error
}

func NewAccessLogStore() *AccessLogStore {
	return &AccessLogStore{}
}

func (s *AccessLogStore) Create(_ context.Context, entry *model.AccessLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.nextID++
	entry.ID = s.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *AccessLogStore) ListNewest(_ context.Context, limit, offset int) ([]model.AccessLog, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}
	sorted := make([]model.AccessLog, len(s.entries))
	copy(sorted, s.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})

	out := []model.AccessLog{}
	if offset < len(sorted) {
		end := offset + limit
		if end > len(sorted) {
			end = len(sorted)
		}
		out = append(out, sorted[offset:end]...)
	}
	return out, len(sorted), nil
}

// Entries returns a copy of everything written so far, oldest first.
func (s *AccessLogStore) Entries() []model.AccessLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AccessLog, len(s.entries))
	copy(out, s.entries)
	return out
}
