package realtime_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/realtime"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

func event(i int) entity.Event {
	return entity.Event{Type: entity.EventStockUpdated, Data: fmt.Sprintf("ev-%d", i)}
}

// drain lee todo lo que haya en el buffer sin bloquear.
func drain(sub *realtime.Subscription) []entity.Event {
	var out []entity.Event
	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestHub_PublishLlegaATodosEnOrden(t *testing.T) {
	hub := realtime.NewHub(16, logger.Nop())
	a := hub.Subscribe()
	b := hub.Subscribe()

	for i := 0; i < 5; i++ {
		hub.Publish(event(i))
	}

	for _, sub := range []*realtime.Subscription{a, b} {
		got := drain(sub)
		require.Len(t, got, 5)
		for i, ev := range got {
			assert.Equal(t, fmt.Sprintf("ev-%d", i), ev.Data, "el orden de entrega debe coincidir con el de publicación")
		}
	}
	assert.Equal(t, 2, hub.Count())
}

func TestHub_SuscriptorLentoSeDesconectaSinAfectarAOtros(t *testing.T) {
	hub := realtime.NewHub(2, logger.Nop())
	slow := hub.Subscribe()
	fast := hub.Subscribe()

	hub.Publish(event(0))
	hub.Publish(event(1))
	require.Len(t, drain(fast), 2)

	// slow no leyó nada: el tercer evento desborda su buffer.
	hub.Publish(event(2))

	select {
	case <-slow.Done():
	default:
		t.Fatal("el suscriptor lento debió ser desconectado")
	}
	got := drain(fast)
	require.Len(t, got, 1)
	assert.Equal(t, "ev-2", got[0].Data)
	assert.Equal(t, 1, hub.Count())

	// Lo que alcanzó a encolarse sigue disponible y luego el canal queda cerrado.
	assert.Len(t, drain(slow), 2)
	_, ok := <-slow.Events()
	assert.False(t, ok)
}

func TestHub_UnsubscribeEsIdempotente(t *testing.T) {
	hub := realtime.NewHub(4, logger.Nop())
	sub := hub.Subscribe()

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	hub.Unsubscribe(nil)

	assert.Zero(t, hub.Count())
	hub.Publish(event(1))
	_, ok := <-sub.Events()
	assert.False(t, ok, "un suscriptor desconectado no recibe eventos")
}

func TestHub_SinDurabilidadParaNuevosSuscriptores(t *testing.T) {
	hub := realtime.NewHub(4, logger.Nop())
	hub.Publish(event(0))

	late := hub.Subscribe()
	hub.Publish(event(1))

	got := drain(late)
	require.Len(t, got, 1)
	assert.Equal(t, "ev-1", got[0].Data)
}

func TestHub_CloseDesconectaATodos(t *testing.T) {
	hub := realtime.NewHub(4, logger.Nop())
	a := hub.Subscribe()
	hub.Close()
	hub.Close()

	<-a.Done()
	hub.Publish(event(1))
	assert.Zero(t, hub.Count())

	after := hub.Subscribe()
	_, ok := <-after.Events()
	assert.False(t, ok, "suscribirse con el Hub cerrado devuelve un handle ya cerrado")
}
