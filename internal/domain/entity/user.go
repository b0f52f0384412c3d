package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// User representa un usuario del panel de administración.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt hash
	Role         string // admin, viewer
	CreatedAt    time.Time
	LastLogin    *time.Time
}
