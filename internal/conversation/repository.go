package conversation

import (
	"context"
	"sync"
	"time"
)

// Repository persists one State per phone. Load returns a fresh idle
// state for unknown or expired phones.
type Repository interface {
	Load(ctx context.Context, phone string) (State, error)
	Save(ctx context.Context, st State) error
	Delete(ctx context.Context, phone string) error
}

// MemoryRepository keeps states in process. States untouched for longer
// than ttl are treated as absent (ttl <= 0 disables expiry).
type MemoryRepository struct {
	mu     sync.Mutex
	states map[string]State
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	return &MemoryRepository{
		states: make(map[string]State),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (r *MemoryRepository) Load(_ context.Context, phone string) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.states[phone]
	if !ok {
		return NewState(phone), nil
	}
	if r.ttl > 0 && r.now().Sub(st.UpdatedAt) > r.ttl {
		delete(r.states, phone)
		return NewState(phone), nil
	}
	return st.clone(), nil
}

func (r *MemoryRepository) Save(_ context.Context, st State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st.UpdatedAt = r.now()
	r.states[st.Phone] = st.clone()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, phone)
	return nil
}
