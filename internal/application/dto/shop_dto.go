package dto

// CreateShopRequest entrada para registrar una farmacia.
type CreateShopRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	Address    string `json:"address" validate:"required"`
	Status     string `json:"status,omitempty" validate:"omitempty,oneof=online offline away busy"`
	AppVersion string `json:"app_version,omitempty"`
}

// UpdateShopStatusRequest body para PUT /api/shops/:id/status.
type UpdateShopStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=online offline away busy"`
}
