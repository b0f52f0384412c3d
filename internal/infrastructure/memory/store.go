// Package memory implementa los repositorios en memoria: mismo contrato que PostgreSQL
// (bloqueo por lote, transacción atómica, snapshot consistente) sin base de datos.
// Se usa con LEDGER_STORE=memory y como backend de pruebas.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/application/analytics"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

type state struct {
	batches   map[string]*entity.Batch
	products  map[string]*entity.Product
	shops     map[string]*entity.Shop
	movements []*entity.Movement // orden de commit
	sales     map[string]*entity.Sale
	saleItems []*entity.SaleItem // orden de commit
}

func newState() *state {
	return &state{
		batches:  make(map[string]*entity.Batch),
		products: make(map[string]*entity.Product),
		shops:    make(map[string]*entity.Shop),
		sales:    make(map[string]*entity.Sale),
	}
}

func (st *state) clone() *state {
	c := newState()
	for id, b := range st.batches {
		c.batches[id] = b.Clone()
	}
	for id, p := range st.products {
		cp := *p
		c.products[id] = &cp
	}
	for id, s := range st.shops {
		cs := *s
		c.shops[id] = &cs
	}
	c.movements = append([]*entity.Movement(nil), st.movements...)
	for id, sale := range st.sales {
		c.sales[id] = sale.Clone()
	}
	c.saleItems = append([]*entity.SaleItem(nil), st.saleItems...)
	return c
}

var _ analytics.SnapshotRunner = (*Store)(nil)

// Store estado compartido del backend en memoria.
type Store struct {
	mu    sync.RWMutex
	st    *state
	locks *lockArena
	users *UserRepository

	clockMu  sync.Mutex
	lastTick time.Time
	now      func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		st:    newState(),
		locks: newLockArena(),
		users: NewUserRepository(),
		now:   time.Now,
	}
}

// tick devuelve un instante estrictamente mayor que el anterior.
func (s *Store) tick() time.Time {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	s.lastTick = entity.NextUpdatedAt(s.lastTick, s.now().UTC())
	return s.lastTick
}

func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.st)
}

// Batches vista de solo lectura de lotes confirmados.
func (s *Store) Batches() repository.BatchReader { return batchView{read: s.read} }

// Movements vista de solo lectura del historial confirmado.
func (s *Store) Movements() repository.MovementReader { return movementView{read: s.read} }

// Products repositorio del catálogo.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s: s} }

// Shops repositorio de farmacias.
func (s *Store) Shops() repository.ShopRepository { return &shopRepo{s: s} }

// Sales repositorio de cabeceras de venta.
func (s *Store) Sales() repository.SaleRepository { return &saleRepo{s: s} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepository { return s.users }

// Snapshot ejecuta fn sobre una copia del estado tomada bajo un único bloqueo de lectura;
// nunca espera por los bloqueos de lote.
func (s *Store) Snapshot(ctx context.Context, fn func(
	batches repository.BatchReader,
	movements repository.MovementReader,
	products repository.ProductReader,
	shops repository.ShopReader,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	snap := s.st.clone()
	s.mu.RUnlock()

	direct := func(f func(st *state)) { f(snap) }
	return fn(batchView{read: direct}, movementView{read: direct}, productView{read: direct}, shopView{read: direct})
}

// batchView lecturas de lotes sobre un estado; read decide si se toma el bloqueo.
type batchView struct {
	read func(func(st *state))
}

var _ repository.BatchReader = batchView{}

func (v batchView) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	var out *entity.Batch
	v.read(func(st *state) { out = st.batches[id].Clone() })
	return out, nil
}

func (v batchView) List(_ context.Context) ([]*entity.Batch, error) {
	return v.filter(func(*entity.Batch) bool { return true }), nil
}

func (v batchView) ListByShop(_ context.Context, shopID string) ([]*entity.Batch, error) {
	return v.filter(func(b *entity.Batch) bool { return b.ShopID == shopID }), nil
}

func (v batchView) ListByProduct(_ context.Context, productID string) ([]*entity.Batch, error) {
	return v.filter(func(b *entity.Batch) bool { return b.ProductID == productID }), nil
}

func (v batchView) filter(keep func(*entity.Batch) bool) []*entity.Batch {
	out := make([]*entity.Batch, 0)
	v.read(func(st *state) {
		for _, b := range st.batches {
			if keep(b) {
				out = append(out, b.Clone())
			}
		}
	})
	sortBatches(out)
	return out
}

// sortBatches ordena por última actualización descendente, igual que el listado SQL.
func sortBatches(list []*entity.Batch) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

type movementView struct {
	read func(func(st *state))
}

var _ repository.MovementReader = movementView{}

func (v movementView) ListByBatch(_ context.Context, batchID string) ([]*entity.Movement, error) {
	return v.filter(func(m *entity.Movement) bool { return m.BatchID == batchID }, false), nil
}

func (v movementView) ListAll(_ context.Context) ([]*entity.Movement, error) {
	return v.filter(func(*entity.Movement) bool { return true }, true), nil
}

func (v movementView) ListByType(_ context.Context, movementType string) ([]*entity.Movement, error) {
	return v.filter(func(m *entity.Movement) bool { return m.Type == movementType }, false), nil
}

func (v movementView) filter(keep func(*entity.Movement) bool, desc bool) []*entity.Movement {
	out := make([]*entity.Movement, 0)
	v.read(func(st *state) {
		for _, m := range st.movements {
			if keep(m) {
				cp := *m
				out = append(out, &cp)
			}
		}
	})
	sortMovements(out, desc)
	return out
}

// sortMovements ordena por CreatedAt; el orden estable conserva la secuencia de inserción en empates.
func sortMovements(list []*entity.Movement, desc bool) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	if desc {
		for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
			list[i], list[j] = list[j], list[i]
		}
	}
}

type productView struct {
	read func(func(st *state))
}

func (v productView) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	v.read(func(st *state) {
		if p, ok := st.products[id]; ok {
			cp := *p
			out = &cp
		}
	})
	return out, nil
}

func (v productView) List(_ context.Context) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0)
	v.read(func(st *state) {
		for _, p := range st.products {
			cp := *p
			out = append(out, &cp)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type shopView struct {
	read func(func(st *state))
}

func (v shopView) GetByID(_ context.Context, id string) (*entity.Shop, error) {
	var out *entity.Shop
	v.read(func(st *state) {
		if s, ok := st.shops[id]; ok {
			cp := *s
			out = &cp
		}
	})
	return out, nil
}

func (v shopView) List(_ context.Context) ([]*entity.Shop, error) {
	out := make([]*entity.Shop, 0)
	v.read(func(st *state) {
		for _, s := range st.shops {
			cp := *s
			out = append(out, &cp)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
