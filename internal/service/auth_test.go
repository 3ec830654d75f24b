package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
)

func TestRegisterAndLogin(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret")

	token, err := svc.Register("cook@example.com", "cook", "Julia", "Child", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "cook", claims.Username)

	user, err := svc.GetUser(claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, "cook@example.com", user.Email)

	loginToken, err := svc.Login("cook@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)
}

func TestRegisterValidation(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret")

	tests := []struct {
		name      string
		email     string
		username  string
		firstName string
		lastName  string
		password  string
	}{
		{"username with space", "a@example.com", "bad name", "A", "B", "pw"},
		{"username with slash", "a@example.com", "bad/name", "A", "B", "pw"},
		{"missing email", "", "gooduser", "A", "B", "pw"},
		{"missing first name", "a@example.com", "gooduser", "", "B", "pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(tt.email, tt.username, tt.firstName, tt.lastName, tt.password)
			assert.True(t, service.IsValidation(err), "expected a validation error, got %v", err)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret")

	_, err := svc.Register("cook@example.com", "cook", "Julia", "Child", "password123")
	require.NoError(t, err)

	_, err = svc.Register("cook@example.com", "othercook", "Other", "Cook", "password123")
	assert.ErrorIs(t, err, service.ErrAlreadyExists)

	_, err = svc.Register("other@example.com", "cook", "Other", "Cook", "password123")
	assert.ErrorIs(t, err, service.ErrAlreadyExists)
}

func TestLoginInvalidCredentials(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret")

	_, err := svc.Register("cook@example.com", "cook", "Julia", "Child", "password123")
	require.NoError(t, err)

	_, err = svc.Login("cook@example.com", "wrongpassword")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret")

	token, err := svc.Register("cook@example.com", "cook", "Julia", "Child", "password123")
	require.NoError(t, err)

	other := service.NewAuthService(db, "different-secret")
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}
