package service

import (
	"context"
	"sync"
)

// StoreTx provides the transactional boundary for a registration. The
// callback runs with a context that carries the open transaction; returning
// an error discards every write, returning nil commits them.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// inMemoryStoreTx is the coarse-lock stand-in used with memory stores: no
// rollback, just one writer at a time.
type inMemoryStoreTx struct {
	mu sync.Mutex
}

func newInMemoryStoreTx() *inMemoryStoreTx {
	return &inMemoryStoreTx{}
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}
