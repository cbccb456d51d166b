package user

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryRepository builds an in-memory user store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return errors.New("user exists")
	}
	r.users[user.Username] = user
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) FindByUsername(_ context.Context, username string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepository) SetOTP(_ context.Context, id, code string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for username, user := range r.users {
		if user.ID == id {
			c, e := code, expiry
			user.OTPCode = &c
			user.OTPExpiry = &e
			r.users[username] = user
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryRepository) ClearOTP(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for username, user := range r.users {
		if user.ID == id {
			user.OTPCode = nil
			user.OTPExpiry = nil
			r.users[username] = user
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryRepository) ConsumeOTP(_ context.Context, id, code string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for username, user := range r.users {
		if user.ID != id {
			continue
		}
		if user.OTPCode == nil || user.OTPExpiry == nil {
			return false, nil
		}
		if *user.OTPCode != code || !user.OTPExpiry.After(now) {
			return false, nil
		}
		user.OTPCode = nil
		user.OTPExpiry = nil
		r.users[username] = user
		return true, nil
	}
	return false, ErrNotFound
}
