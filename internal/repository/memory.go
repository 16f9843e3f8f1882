package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/iliyamo/hotel-room-allocation/internal/model"
	"github.com/iliyamo/hotel-room-allocation/internal/utils"
)

// MemoryUserRepo keeps accounts in process memory.  It backs the auth
// endpoints when no database is configured; accounts vanish on restart.
type MemoryUserRepo struct {
	mu      sync.RWMutex
	nextID  uint64
	byID    map[uint64]model.User
	byEmail map[string]uint64
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{byID: map[uint64]model.User{}, byEmail: map[string]uint64{}}
}

func (r *MemoryUserRepo) Create(_ context.Context, email, password, role string, cost int) (uint64, error) {
	email = normalizeEmail(email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[email]; taken {
		return 0, ErrEmailExists
	}
	r.nextID++
	now := time.Now().UTC()
	r.byID[r.nextID] = model.User{
		ID: r.nextID, Email: email, PasswordHash: hash, Role: model.NormalizeRole(role),
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	r.byEmail[email] = r.nextID
	return r.nextID, nil
}

func (r *MemoryUserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[normalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id uint64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

type memoryToken struct {
	userID  uint64
	exp     time.Time
	revoked bool
}

// MemoryTokenRepo is the in-process counterpart of TokenRepo.
type MemoryTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*memoryToken
	Now    func() time.Time
}

func NewMemoryTokenRepo() *MemoryTokenRepo {
	return &MemoryTokenRepo{tokens: map[string]*memoryToken{}, Now: func() time.Time { return time.Now().UTC() }}
}

func (r *MemoryTokenRepo) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[tokenHash] = &memoryToken{userID: userID, exp: exp}
	return nil
}

func (r *MemoryTokenRepo) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[tokenHash]
	if !ok || t.revoked || r.Now().After(t.exp) {
		return 0, ErrTokenInvalid
	}
	return t.userID, nil
}

func (r *MemoryTokenRepo) RevokeByHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[tokenHash]; ok {
		t.revoked = true
	}
	return nil
}

func (r *MemoryTokenRepo) RevokeAllForUser(_ context.Context, userID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}
