package commands

import (
	"context"
	"sync"
)

type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind]Handler)}
}

func (b *Bus) Register(kind Kind, handler Handler) {
	b.mu.Lock()
	b.handlers[kind] = handler
	b.mu.Unlock()
}

func (b *Bus) Execute(ctx context.Context, env *Env, cmd Command) (Result, error) {
	b.mu.RLock()
	h, ok := b.handlers[cmd.CommandType()]
	b.mu.RUnlock()
	if !ok {
		return Result{}, ErrHandlerNotFound
	}
	return h.Handle(ctx, env, cmd)
}
