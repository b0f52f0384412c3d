package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/pkg/jwt"
)

func TestGenerateYParse(t *testing.T) {
	token, err := jwt.Generate("secreto", "u-1", "admin", "admin", "farmacia-api", 5)
	require.NoError(t, err)

	claims, err := jwt.Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "farmacia-api", claims.Issuer)
}

func TestParse_Rechazos(t *testing.T) {
	token, err := jwt.Generate("secreto", "u-1", "ana", "viewer", "farmacia-api", 5)
	require.NoError(t, err)

	_, err = jwt.Parse("otro", token)
	assert.Error(t, err)

	expired, err := jwt.Generate("secreto", "u-1", "ana", "viewer", "farmacia-api", -1)
	require.NoError(t, err)
	_, err = jwt.Parse("secreto", expired)
	assert.Error(t, err)

	_, err = jwt.Generate("", "u-1", "ana", "viewer", "x", 5)
	assert.Error(t, err)
}
