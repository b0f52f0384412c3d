// Package realtime distribuye los eventos de dominio a los suscriptores conectados
// (WebSocket del panel) sin bloquear nunca el camino de escritura del libro.
package realtime

import (
	"sync"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

// DefaultBufferSize capacidad por suscriptor cuando no se configura otra.
const DefaultBufferSize = 64

// Subscription handle de un suscriptor. Events se cierra cuando el suscriptor se desconecta
// (Unsubscribe, buffer lleno o cierre del Hub); para volver a recibir hay que suscribirse de nuevo.
type Subscription struct {
	id     uint64
	events chan entity.Event
	done   chan struct{}
}

// ID identificador del suscriptor dentro del Hub.
func (s *Subscription) ID() uint64 { return s.id }

// Events canal de eventos en orden de publicación.
func (s *Subscription) Events() <-chan entity.Event { return s.events }

// Done se cierra cuando el Hub desconecta al suscriptor.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Hub mantiene el conjunto de suscriptores vivos y les reparte cada evento publicado.
// Publish nunca bloquea: un suscriptor con el buffer lleno se desconecta.
type Hub struct {
	mu         sync.Mutex
	subs       map[uint64]*Subscription
	nextID     uint64
	bufferSize int
	closed     bool
	log        *logger.Logger
}

// NewHub construye el Hub. bufferSize <= 0 usa DefaultBufferSize.
func NewHub(bufferSize int, log *logger.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		subs:       make(map[uint64]*Subscription),
		bufferSize: bufferSize,
		log:        log,
	}
}

// Subscribe registra un nuevo suscriptor. Con el Hub cerrado devuelve uno ya desconectado.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:     h.nextID,
		events: make(chan entity.Event, h.bufferSize),
		done:   make(chan struct{}),
	}
	if h.closed {
		close(sub.events)
		close(sub.done)
		return sub
	}
	h.subs[sub.id] = sub
	h.log.Debug().Uint64("subscriber", sub.id).Int("total", len(h.subs)).Msg("suscriptor conectado")
	return sub
}

// Unsubscribe desconecta al suscriptor. Es idempotente.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.remove(sub.id) {
		h.log.Debug().Uint64("subscriber", sub.id).Int("total", len(h.subs)).Msg("suscriptor desconectado")
	}
}

// Publish entrega el evento a todos los suscriptores conectados en este instante.
// No hay durabilidad: quien no esté conectado lo pierde.
func (h *Hub) Publish(ev entity.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for id, sub := range h.subs {
		select {
		case sub.events <- ev:
		default:
			// No puede seguir el ritmo: se desconecta en lugar de frenar al Hub.
			h.remove(id)
			h.log.Warn().
				Uint64("subscriber", id).
				Str("event", ev.Type).
				Int("buffer", h.bufferSize).
				Msg("suscriptor lento desconectado")
		}
	}
}

// Count número de suscriptores conectados.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close desconecta a todos los suscriptores; las publicaciones posteriores se ignoran.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id := range h.subs {
		h.remove(id)
	}
}

// remove requiere h.mu tomado.
func (h *Hub) remove(id uint64) bool {
	sub, ok := h.subs[id]
	if !ok {
		return false
	}
	delete(h.subs, id)
	close(sub.events)
	close(sub.done)
	return true
}
