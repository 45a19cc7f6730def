package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	usermodel "github.com/sanjitgh/authorization-server-side/internal/models/user"
)

// MemoryStorage keeps users in a map. Used by unit tests and local runs
// without a database.
type MemoryStorage struct {
	mu    sync.RWMutex
	users map[string]*usermodel.User // keyed by ID
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users: make(map[string]*usermodel.User),
	}
}

func (s *MemoryStorage) FindByUserName(ctx context.Context, userName string) (*usermodel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.UserName == userName {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryStorage) FindByShopNameAny(ctx context.Context, names []string) (*usermodel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}

	for _, u := range s.users {
		for _, shop := range u.ShopNames {
			if _, ok := wanted[shop]; ok {
				return copyUser(u), nil
			}
		}
	}
	return nil, nil
}

func (s *MemoryStorage) FindByID(ctx context.Context, id string) (*usermodel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.users[id]
	if !exists {
		return nil, nil
	}
	return copyUser(u), nil
}

func (s *MemoryStorage) Insert(ctx context.Context, u *usermodel.User) (*usermodel.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shops := make(map[string]struct{}, len(u.ShopNames))
	for _, n := range u.ShopNames {
		shops[n] = struct{}{}
	}

	for _, existing := range s.users {
		if existing.UserName == u.UserName {
			return nil, ErrDuplicateUserName
		}
		for _, shop := range existing.ShopNames {
			if _, ok := shops[shop]; ok {
				return nil, ErrDuplicateShopName
			}
		}
	}

	stored := copyUser(u)
	stored.ID = uuid.New().String()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.users[stored.ID] = stored

	return copyUser(stored), nil
}

func (s *MemoryStorage) Close(ctx context.Context) error {
	return nil
}

func copyUser(u *usermodel.User) *usermodel.User {
	out := *u
	out.ShopNames = append([]string(nil), u.ShopNames...)
	return &out
}
