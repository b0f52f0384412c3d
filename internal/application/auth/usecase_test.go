package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/application/auth"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/memory"
	"github.com/jhoicas/Farmacia-api/pkg/jwt"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	uc := auth.NewAuthUseCase(memory.NewUserRepository(), auth.JWTConfig{Secret: "s3cr3t", ExpMinutes: 10, Issuer: "farmacia-api"})

	created, err := uc.RegisterUser(ctx, "admin", "admin@farmacia.co", "clave-segura", entity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, created.Role)

	_, err = uc.RegisterUser(ctx, "admin", "", "otra-clave-1", "")
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.RegisterUser(ctx, "corto", "", "123", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	resp, err := uc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "clave-segura"})
	require.NoError(t, err)
	require.NotNil(t, resp.User.LastLogin)
	claims, err := jwt.Parse("s3cr3t", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, entity.RoleAdmin, claims.Role)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
