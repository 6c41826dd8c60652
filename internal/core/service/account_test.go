package service_test

import (
	"testing"

	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/niksmo/techstore/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountService(t *testing.T) {
	newService := func(t *testing.T, registrar *MockRegistrar) (
		service.AccountService, service.CartService, service.SessionService,
	) {
		carts, sessionRepo := newRepos(t)
		cart := service.NewCartService(carts, service.ActivityPublisher{})
		auth := new(MockAuthenticator)
		auth.On("Authenticate", mock.Anything, mock.Anything).Return(ana, nil)
		sessions := service.NewSessionService(auth, sessionRepo, service.ActivityPublisher{})
		return service.NewAccountService(registrar, sessions, cart), cart, sessions
	}

	login := func(t *testing.T, s service.SessionService) {
		_, err := s.Login(t.Context(), domain.Credentials{Email: "ana@test.com", Password: "pw"})
		require.NoError(t, err)
	}

	t.Run("Register", func(t *testing.T) {
		r := domain.Registration{
			Name: "Ana", Lastname: "Diaz", Email: "ana@test.com",
			Telephone: "555", Password: "pw", ConfirmPassword: "pw",
		}
		registrar := new(MockRegistrar)
		registrar.On("RegisterClient", mock.Anything, r).Return(nil)
		s, _, sessions := newService(t, registrar)

		require.NoError(t, s.Register(t.Context(), r))
		registrar.AssertExpectations(t)
		assert.False(t, sessions.IsAuthenticated(t.Context()))
	})

	t.Run("RegisterInvalid", func(t *testing.T) {
		registrar := new(MockRegistrar)
		s, _, _ := newService(t, registrar)

		err := s.Register(t.Context(), domain.Registration{Password: "a", ConfirmPassword: "b"})
		require.ErrorIs(t, err, domain.ErrValidation)
		registrar.AssertNotCalled(t, "RegisterClient", mock.Anything, mock.Anything)
	})

	t.Run("DashboardRequiresAuth", func(t *testing.T) {
		s, _, _ := newService(t, new(MockRegistrar))
		_, err := s.Dashboard(t.Context())
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("Dashboard", func(t *testing.T) {
		s, cart, sessions := newService(t, new(MockRegistrar))
		login(t, sessions)
		_, err := cart.AddOrIncrement(t.Context(), laptop, 1)
		require.NoError(t, err)

		d, err := s.Dashboard(t.Context())
		require.NoError(t, err)
		assert.Equal(t, ana.User, d.User)
		assert.Equal(t, 1, d.Cart.Items)
		assert.Equal(t, "29.00", d.Cart.Total.StringFixed(2))
		assert.Len(t, d.Lines, 1)
	})

	t.Run("Checkout", func(t *testing.T) {
		s, cart, sessions := newService(t, new(MockRegistrar))

		require.ErrorIs(t, s.Checkout(t.Context()), domain.ErrUnauthorized)

		login(t, sessions)
		require.ErrorIs(t, s.Checkout(t.Context()), domain.ErrEmptyCart)

		_, err := cart.AddOrIncrement(t.Context(), laptop, 1)
		require.NoError(t, err)
		require.ErrorIs(t, s.Checkout(t.Context()), domain.ErrCheckoutUnavailable)
		assert.Equal(t, 1, cart.Load(t.Context()).Len())
	})
}
