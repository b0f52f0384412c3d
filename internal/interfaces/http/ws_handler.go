package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Farmacia-api/internal/realtime"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

// defaultWSWriteTimeout plazo de escritura cuando no se configura otro.
const defaultWSWriteTimeout = 10 * time.Second

// WSHandler suscribe cada conexión WebSocket al Hub y le reenvía los eventos.
type WSHandler struct {
	hub          *realtime.Hub
	writeTimeout time.Duration
	log          *logger.Logger
}

// NewWSHandler construye el handler.
func NewWSHandler(hub *realtime.Hub, writeTimeout time.Duration, log *logger.Logger) *WSHandler {
	if writeTimeout <= 0 {
		writeTimeout = defaultWSWriteTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &WSHandler{hub: hub, writeTimeout: writeTimeout, log: log.Named("ws")}
}

// Upgrade rechaza con 426 lo que no sea un handshake WebSocket.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Serve atiende una conexión: mensaje de bienvenida y luego los eventos del Hub en orden.
// Lo que envíe el cliente se descarta; leer solo sirve para detectar el cierre.
func (h *WSHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		sub := h.hub.Subscribe()
		defer h.hub.Unsubscribe(sub)

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		if err := h.write(conn, fiber.Map{"type": "connected", "data": fiber.Map{"subscriber": sub.ID()}}); err != nil {
			return
		}
		for {
			select {
			case <-closed:
				return
			case ev, ok := <-sub.Events():
				if !ok {
					h.log.Debug().Uint64("subscriber", sub.ID()).Msg("el hub cerró la suscripción")
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
						time.Now().Add(h.writeTimeout))
					return
				}
				if err := h.write(conn, ev); err != nil {
					h.log.Debug().Err(err).Uint64("subscriber", sub.ID()).Msg("escritura fallida, cerrando conexión")
					return
				}
			}
		}
	})
}

func (h *WSHandler) write(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}
