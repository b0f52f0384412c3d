package entity

import "time"

// Estados de conexión de una farmacia.
const (
	ShopStatusOnline  = "online"
	ShopStatusOffline = "offline"
	ShopStatusAway    = "away"
	ShopStatusBusy    = "busy"
)

// Shop representa una farmacia de la red.
type Shop struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Status     string    `json:"status"`
	AppVersion string    `json:"app_version"`
	LastSeen   time.Time `json:"last_seen"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsValidShopStatus indica si s es un estado permitido.
func IsValidShopStatus(s string) bool {
	switch s {
	case ShopStatusOnline, ShopStatusOffline, ShopStatusAway, ShopStatusBusy:
		return true
	}
	return false
}
