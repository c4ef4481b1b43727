package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anonto42/blog/backend/internal/models"
)

// MemoryUserRepository implements UserRepository in process memory
type MemoryUserRepository struct {
	mu     sync.RWMutex
	lastID uint
	users  map[uint]models.User
}

// NewMemoryUserRepository creates an empty MemoryUserRepository
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[uint]models.User)}
}

// CreateUser stores a new user, rejecting a taken email
func (r *MemoryUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w: %s", models.ErrDuplicateUser, user.Email)
		}
	}
	r.lastID++
	user.ID = r.lastID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

// GetUserByID retrieves a user by ID
func (r *MemoryUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

// GetUserByEmail retrieves a user by email
func (r *MemoryUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

// GetUserByFirebaseUID retrieves a user by Firebase UID
func (r *MemoryUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.FirebaseUID != nil && *u.FirebaseUID == firebaseUID })
}

// UpdateUser replaces a stored user
func (r *MemoryUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return models.ErrUserNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, models.ErrUserNotFound
}
