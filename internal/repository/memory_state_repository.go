package repository

import (
	"context"
	"sync"

	"teams-pollbot/internal/domain/poll"
)

// MemoryStateRepository keeps the encoded document in memory. Encoding on
// every save keeps callers from sharing pointers with the stored copy.
type MemoryStateRepository struct {
	mu    sync.Mutex
	data  []byte
	loads int
	saves int
}

func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{}
}

func (r *MemoryStateRepository) Load(_ context.Context) (*poll.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	return decodeState(r.data)
}

func (r *MemoryStateRepository) Save(_ context.Context, state *poll.State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.data = data
	return nil
}

func (r *MemoryStateRepository) Loads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loads
}

func (r *MemoryStateRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}
