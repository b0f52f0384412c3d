package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBatch(t *testing.T, s *memory.Store, id string, stock int) {
	t.Helper()
	err := s.Run(context.Background(), func(batches repository.BatchWriter, _ repository.MovementWriter) error {
		return batches.Create(context.Background(), &entity.Batch{
			ID: id, ProductID: "p1", ShopID: "s1", BatchNumber: "L-" + id, CurrentStock: stock,
		})
	})
	require.NoError(t, err)
}

func TestRun_ConfirmaLoteYMovimientoJuntos(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	seedBatch(t, s, "b1", 0)

	err := s.Run(ctx, func(batches repository.BatchWriter, movs repository.MovementWriter) error {
		b, err := batches.GetForUpdate(ctx, "b1")
		require.NoError(t, err)
		require.NotNil(t, b)
		if _, err := batches.SetStock(ctx, "b1", 5); err != nil {
			return err
		}
		m, err := movs.Append(ctx, &entity.Movement{BatchID: "b1", Type: entity.MovementTypeIn, Quantity: 5})
		require.NoError(t, err)
		assert.NotEmpty(t, m.ID)
		assert.False(t, m.CreatedAt.IsZero())

		// Antes del commit nada es visible fuera de la transacción.
		committed, _ := s.Batches().GetByID(ctx, "b1")
		assert.Equal(t, 0, committed.CurrentStock)
		list, _ := s.Movements().ListByBatch(ctx, "b1")
		assert.Empty(t, list)
		return nil
	})
	require.NoError(t, err)

	b, err := s.Batches().GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 5, b.CurrentStock)
	list, err := s.Movements().ListByBatch(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].Quantity)
}

func TestRun_ErrorDescartaTodo(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	seedBatch(t, s, "b1", 3)
	boom := errors.New("boom")

	err := s.Run(ctx, func(batches repository.BatchWriter, movs repository.MovementWriter) error {
		_, err := batches.SetStock(ctx, "b1", 10)
		require.NoError(t, err)
		_, err = movs.Append(ctx, &entity.Movement{BatchID: "b1", Type: entity.MovementTypeIn, Quantity: 7})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	b, _ := s.Batches().GetByID(ctx, "b1")
	assert.Equal(t, 3, b.CurrentStock)
	list, _ := s.Movements().ListAll(ctx)
	assert.Empty(t, list)
}

func TestRun_ContextoCanceladoAntesDelCommit(t *testing.T) {
	s := memory.NewStore()
	seedBatch(t, s, "b1", 3)
	ctx, cancel := context.WithCancel(context.Background())

	err := s.Run(ctx, func(batches repository.BatchWriter, _ repository.MovementWriter) error {
		_, err := batches.SetStock(ctx, "b1", 1)
		cancel()
		return err
	})
	require.ErrorIs(t, err, context.Canceled)

	b, _ := s.Batches().GetByID(context.Background(), "b1")
	assert.Equal(t, 3, b.CurrentStock)
}

func TestGetForUpdate_SerializaPorLote(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	seedBatch(t, s, "b1", 10)
	seedBatch(t, s, "b2", 10)

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(batches repository.BatchWriter, _ repository.MovementWriter) error {
			if _, err := batches.GetForUpdate(ctx, "b1"); err != nil {
				return err
			}
			close(locked)
			<-release
			_, err := batches.SetStock(ctx, "b1", 4)
			return err
		})
	}()
	<-locked

	// Otro lote no espera.
	err := s.Run(ctx, func(batches repository.BatchWriter, _ repository.MovementWriter) error {
		_, err := batches.GetForUpdate(ctx, "b2")
		return err
	})
	require.NoError(t, err)

	// El mismo lote espera hasta que se agote el contexto.
	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	err = s.Run(waitCtx, func(batches repository.BatchWriter, _ repository.MovementWriter) error {
		_, err := batches.GetForUpdate(waitCtx, "b1")
		return err
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-done)

	// Tras el commit el bloqueo queda libre y se lee el valor confirmado.
	err = s.Run(ctx, func(batches repository.BatchWriter, _ repository.MovementWriter) error {
		b, err := batches.GetForUpdate(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, 4, b.CurrentStock)
		return nil
	})
	require.NoError(t, err)
}

func TestSetStock_Errores(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	seedBatch(t, s, "b1", 1)

	err := s.Run(ctx, func(batches repository.BatchWriter, _ repository.MovementWriter) error {
		_, err := batches.SetStock(ctx, "nope", 1)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = s.Run(ctx, func(batches repository.BatchWriter, _ repository.MovementWriter) error {
		_, err := batches.SetStock(ctx, "b1", -1)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSetStock_UpdatedAtCreciente(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	seedBatch(t, s, "b1", 1)

	before, _ := s.Batches().GetByID(ctx, "b1")
	prev := before.UpdatedAt
	for i := 0; i < 5; i++ {
		var got *entity.Batch
		require.NoError(t, s.Run(ctx, func(batches repository.BatchWriter, _ repository.MovementWriter) error {
			var err error
			got, err = batches.SetStock(ctx, "b1", i)
			return err
		}))
		assert.True(t, got.UpdatedAt.After(prev))
		prev = got.UpdatedAt
	}
}

func TestMovements_Orden(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	seedBatch(t, s, "b1", 0)

	for _, q := range []int{1, 2, 3} {
		require.NoError(t, s.Run(ctx, func(_ repository.BatchWriter, movs repository.MovementWriter) error {
			_, err := movs.Append(ctx, &entity.Movement{BatchID: "b1", Type: entity.MovementTypeIn, Quantity: q})
			return err
		}))
	}

	asc, err := s.Movements().ListByBatch(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{asc[0].Quantity, asc[1].Quantity, asc[2].Quantity})

	desc, err := s.Movements().ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1}, []int{desc[0].Quantity, desc[1].Quantity, desc[2].Quantity})

	err = s.Run(ctx, func(_ repository.BatchWriter, movs repository.MovementWriter) error {
		_, err := movs.Append(ctx, &entity.Movement{BatchID: "ghost", Type: entity.MovementTypeIn, Quantity: 1})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSnapshot_NoVeEscriturasPosteriores(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	seedBatch(t, s, "b1", 2)

	err := s.Snapshot(ctx, func(batches repository.BatchReader, movs repository.MovementReader, _ repository.ProductReader, _ repository.ShopReader) error {
		require.NoError(t, s.Run(ctx, func(w repository.BatchWriter, _ repository.MovementWriter) error {
			_, err := w.SetStock(ctx, "b1", 9)
			return err
		}))
		b, err := batches.GetByID(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, 2, b.CurrentStock)
		return nil
	})
	require.NoError(t, err)

	b, _ := s.Batches().GetByID(ctx, "b1")
	assert.Equal(t, 9, b.CurrentStock)
}

func TestCatalogo(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	p := &entity.Product{Name: "Ibuprofeno 400mg", SKU: "IBU-400", Category: "Analgésicos"}
	require.NoError(t, s.Products().Create(ctx, p))
	assert.NotEmpty(t, p.ID)
	err := s.Products().Create(ctx, &entity.Product{Name: "Otro", SKU: "IBU-400"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	got, err := s.Products().GetBySKU(ctx, "IBU-400")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)

	shop := &entity.Shop{Name: "Centro", Address: "Calle 1", Status: entity.ShopStatusOffline}
	require.NoError(t, s.Shops().Create(ctx, shop))
	updated, err := s.Shops().UpdateStatus(ctx, shop.ID, entity.ShopStatusOnline, time.Now())
	require.NoError(t, err)
	assert.Equal(t, entity.ShopStatusOnline, updated.Status)

	missing, err := s.Shops().UpdateStatus(ctx, "nope", entity.ShopStatusOnline, time.Now())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
