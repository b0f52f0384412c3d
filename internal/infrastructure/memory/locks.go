package memory

import (
	"context"
	"sync"
)

// lockArena bloqueo exclusivo por clave (lote o venta), equivalente en memoria a SELECT ... FOR UPDATE.
// Cada entrada es un semáforo de capacidad 1 para poder esperar respetando ctx.
type lockArena struct {
	mu    sync.Mutex
	locks map[string]*batchLock
}

type batchLock struct {
	sem  chan struct{}
	refs int
}

func newLockArena() *lockArena {
	return &lockArena{locks: make(map[string]*batchLock)}
}

// acquire espera el bloqueo del lote o la cancelación de ctx.
func (a *lockArena) acquire(ctx context.Context, id string) error {
	a.mu.Lock()
	l, ok := a.locks[id]
	if !ok {
		l = &batchLock{sem: make(chan struct{}, 1)}
		a.locks[id] = l
	}
	l.refs++
	a.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		a.unref(id, l)
		return ctx.Err()
	}
}

// release libera un bloqueo obtenido con acquire.
func (a *lockArena) release(id string) {
	a.mu.Lock()
	l, ok := a.locks[id]
	a.mu.Unlock()
	if !ok {
		return
	}
	<-l.sem
	a.unref(id, l)
}

func (a *lockArena) unref(id string, l *batchLock) {
	a.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(a.locks, id)
	}
	a.mu.Unlock()
}
