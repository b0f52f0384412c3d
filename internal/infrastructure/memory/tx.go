package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Farmacia-api/internal/application/ledger"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var (
	_ ledger.TxRunner     = (*Store)(nil)
	_ ledger.SaleTxRunner = (*Store)(nil)
)

// Run ejecuta fn como una unidad atómica: las escrituras se acumulan en la transacción y se
// aplican juntas bajo el bloqueo de escritura del almacén. Si fn falla o ctx se cancela antes
// del commit no se aplica nada. Los bloqueos de lote se liberan siempre al terminar.
func (s *Store) Run(ctx context.Context, fn func(batchRepo repository.BatchWriter, movRepo repository.MovementWriter) error) error {
	return s.run(ctx, func(t *tx) error { return fn(txBatches{t}, txMovements{t}) })
}

// RunSale es Run con el repositorio de ventas en la misma transacción.
func (s *Store) RunSale(ctx context.Context, fn func(
	batchRepo repository.BatchWriter,
	movRepo repository.MovementWriter,
	saleRepo repository.SaleWriter,
) error) error {
	return s.run(ctx, func(t *tx) error { return fn(txBatches{t}, txMovements{t}, txSales{t}) })
}

func (s *Store) run(ctx context.Context, fn func(t *tx) error) error {
	t := &tx{
		s:       s,
		held:    make(map[string]struct{}),
		batches: make(map[string]*entity.Batch),
		sales:   make(map[string]*entity.Sale),
	}
	defer t.releaseAll()

	if err := fn(t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	for id, b := range t.batches {
		s.st.batches[id] = b
	}
	s.st.movements = append(s.st.movements, t.movements...)
	for id, sale := range t.sales {
		s.st.sales[id] = sale
	}
	s.st.saleItems = append(s.st.saleItems, t.saleItems...)
	s.mu.Unlock()
	return nil
}

type tx struct {
	s         *Store
	held      map[string]struct{}
	batches   map[string]*entity.Batch
	movements []*entity.Movement
	sales     map[string]*entity.Sale
	saleItems []*entity.SaleItem
}

func (t *tx) lock(ctx context.Context, id string) error {
	if _, ok := t.held[id]; ok {
		return nil
	}
	if err := t.s.locks.acquire(ctx, id); err != nil {
		return err
	}
	t.held[id] = struct{}{}
	return nil
}

func (t *tx) releaseAll() {
	for id := range t.held {
		t.s.locks.release(id)
	}
}

// current devuelve la versión del lote visible para la transacción (staged o confirmada).
func (t *tx) current(ctx context.Context, id string) *entity.Batch {
	if b, ok := t.batches[id]; ok {
		return b
	}
	b, _ := t.s.Batches().GetByID(ctx, id)
	return b
}

type txBatches struct{ t *tx }

var _ repository.BatchWriter = txBatches{}

func (r txBatches) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	return r.t.current(ctx, id).Clone(), nil
}

func (r txBatches) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	if err := r.t.lock(ctx, id); err != nil {
		return nil, err
	}
	return r.t.current(ctx, id).Clone(), nil
}

func (r txBatches) Create(ctx context.Context, batch *entity.Batch) error {
	if batch.ID == "" {
		return fmt.Errorf("%w: id de lote requerido", domain.ErrInvalidInput)
	}
	if batch.CurrentStock < 0 {
		return fmt.Errorf("%w: stock negativo", domain.ErrInvalidInput)
	}
	if err := r.t.lock(ctx, batch.ID); err != nil {
		return err
	}
	if r.t.current(ctx, batch.ID) != nil {
		return fmt.Errorf("%w: lote %s", domain.ErrDuplicate, batch.ID)
	}
	b := batch.Clone()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = r.t.s.tick()
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	r.t.batches[b.ID] = b
	return nil
}

func (r txBatches) SetStock(ctx context.Context, id string, newStock int) (*entity.Batch, error) {
	if newStock < 0 {
		return nil, fmt.Errorf("%w: stock negativo (%d)", domain.ErrInvalidInput, newStock)
	}
	if err := r.t.lock(ctx, id); err != nil {
		return nil, err
	}
	cur := r.t.current(ctx, id)
	if cur == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	b := cur.Clone()
	b.CurrentStock = newStock
	b.UpdatedAt = entity.NextUpdatedAt(cur.UpdatedAt, r.t.s.tick())
	r.t.batches[id] = b
	return b.Clone(), nil
}

func (r txBatches) List(ctx context.Context) ([]*entity.Batch, error) {
	return r.merge(ctx, func(*entity.Batch) bool { return true })
}

func (r txBatches) ListByShop(ctx context.Context, shopID string) ([]*entity.Batch, error) {
	return r.merge(ctx, func(b *entity.Batch) bool { return b.ShopID == shopID })
}

func (r txBatches) ListByProduct(ctx context.Context, productID string) ([]*entity.Batch, error) {
	return r.merge(ctx, func(b *entity.Batch) bool { return b.ProductID == productID })
}

func (r txBatches) merge(ctx context.Context, keep func(*entity.Batch) bool) ([]*entity.Batch, error) {
	committed, err := r.t.s.Batches().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Batch, 0, len(committed))
	for _, b := range committed {
		if _, staged := r.t.batches[b.ID]; !staged && keep(b) {
			out = append(out, b)
		}
	}
	for _, b := range r.t.batches {
		if keep(b) {
			out = append(out, b.Clone())
		}
	}
	sortBatches(out)
	return out, nil
}

type txMovements struct{ t *tx }

var _ repository.MovementWriter = txMovements{}

func (r txMovements) Append(ctx context.Context, movement *entity.Movement) (*entity.Movement, error) {
	if r.t.current(ctx, movement.BatchID) == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, movement.BatchID)
	}
	m := *movement
	m.ID = uuid.New().String()
	m.CreatedAt = r.t.s.tick()
	r.t.movements = append(r.t.movements, &m)
	out := m
	return &out, nil
}

func (r txMovements) ListByBatch(ctx context.Context, batchID string) ([]*entity.Movement, error) {
	return r.merge(ctx, func(m *entity.Movement) bool { return m.BatchID == batchID }, false)
}

func (r txMovements) ListAll(ctx context.Context) ([]*entity.Movement, error) {
	return r.merge(ctx, func(*entity.Movement) bool { return true }, true)
}

func (r txMovements) ListByType(ctx context.Context, movementType string) ([]*entity.Movement, error) {
	return r.merge(ctx, func(m *entity.Movement) bool { return m.Type == movementType }, false)
}

func (r txMovements) merge(_ context.Context, keep func(*entity.Movement) bool, desc bool) ([]*entity.Movement, error) {
	out := movementView{read: r.t.s.read}.filter(keep, false)
	for _, m := range r.t.movements {
		if keep(m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sortMovements(out, desc)
	return out, nil
}
