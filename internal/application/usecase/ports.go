package usecase

import "github.com/jhoicas/Farmacia-api/internal/domain/entity"

// EventPublisher recibe los eventos de catálogo y farmacias (realtime.Hub).
type EventPublisher interface {
	Publish(ev entity.Event)
}
