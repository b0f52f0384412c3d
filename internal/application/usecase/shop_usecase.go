package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// ShopUseCase alta, consulta y estado de conexión de farmacias.
type ShopUseCase struct {
	repo      repository.ShopRepository
	publisher EventPublisher
}

// NewShopUseCase construye el caso de uso. publisher puede ser nil.
func NewShopUseCase(repo repository.ShopRepository, publisher EventPublisher) *ShopUseCase {
	return &ShopUseCase{repo: repo, publisher: publisher}
}

// Create registra la farmacia (offline por defecto) y publica shop_created.
func (uc *ShopUseCase) Create(ctx context.Context, in dto.CreateShopRequest) (*entity.Shop, error) {
	if in.Name == "" || in.Address == "" {
		return nil, fmt.Errorf("%w: name y address son requeridos", domain.ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = entity.ShopStatusOffline
	}
	if !entity.IsValidShopStatus(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	shop := &entity.Shop{Name: in.Name, Address: in.Address, Status: status, AppVersion: in.AppVersion}
	if err := uc.repo.Create(ctx, shop); err != nil {
		return nil, err
	}
	uc.publish(entity.Event{Type: entity.EventShopCreated, Data: shop})
	return shop, nil
}

// GetByID obtiene una farmacia o ErrNotFound.
func (uc *ShopUseCase) GetByID(ctx context.Context, id string) (*entity.Shop, error) {
	shop, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, fmt.Errorf("%w: farmacia %s", domain.ErrNotFound, id)
	}
	return shop, nil
}

// List todas las farmacias.
func (uc *ShopUseCase) List(ctx context.Context) ([]*entity.Shop, error) {
	return uc.repo.List(ctx)
}

// UpdateStatus cambia el estado, marca last_seen y publica shop_status_updated.
func (uc *ShopUseCase) UpdateStatus(ctx context.Context, id, status string) (*entity.Shop, error) {
	if !entity.IsValidShopStatus(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	shop, err := uc.repo.UpdateStatus(ctx, id, status, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, fmt.Errorf("%w: farmacia %s", domain.ErrNotFound, id)
	}
	uc.publish(entity.Event{Type: entity.EventShopStatusUpdated, Data: shop})
	return shop, nil
}

func (uc *ShopUseCase) publish(ev entity.Event) {
	if uc.publisher != nil {
		uc.publisher.Publish(ev)
	}
}
