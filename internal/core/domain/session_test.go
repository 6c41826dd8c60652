package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsValidate(t *testing.T) {
	require.NoError(t, domain.Credentials{Email: "a@b.c", Password: "x"}.Validate())

	err := domain.Credentials{Email: " "}.Validate()
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "email is required; password is required", domain.Detail(err, ""))
}

func TestRegistrationValidate(t *testing.T) {
	valid := domain.Registration{
		Name: "Ana", Lastname: "Diaz", Email: "ana@test.com",
		Telephone: "555", Password: "pw", ConfirmPassword: "pw",
	}
	require.NoError(t, valid.Validate())

	t.Run("Mismatch", func(t *testing.T) {
		r := valid
		r.ConfirmPassword = "other"
		err := r.Validate()
		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, domain.Detail(err, ""), "passwords do not match")
	})

	t.Run("MalformedEmail", func(t *testing.T) {
		r := valid
		r.Email = "not-an-email"
		assert.Contains(t, domain.Detail(r.Validate(), ""), "is malformed")
	})

	t.Run("Missing", func(t *testing.T) {
		var vErr *domain.ValidationError
		require.ErrorAs(t, domain.Registration{}.Validate(), &vErr)
		assert.Len(t, vErr.Problems, 5)
	})
}

func TestDetail(t *testing.T) {
	apiErr := &domain.APIError{Kind: domain.ErrNotFound, Status: 404, Detail: "Product not found"}
	wrapped := fmt.Errorf("Client.GetProduct: %w", apiErr)

	assert.Equal(t, "Product not found", domain.Detail(wrapped, "fallback"))
	assert.ErrorIs(t, wrapped, domain.ErrNotFound)
	assert.Equal(t, "fallback", domain.Detail(errors.New("boom"), "fallback"))
	assert.Equal(t, "fallback", domain.Detail(&domain.APIError{Kind: domain.ErrNetwork}, "fallback"))
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "Ana Diaz", domain.User{Name: "Ana", Lastname: "Diaz"}.FullName())
	assert.Equal(t, "Ana", domain.User{Name: "Ana"}.FullName())
}
