package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/niksmo/techstore/internal/core/port"
)

var _ port.Account = (*AccountService)(nil)

type AccountService struct {
	registrar port.ClientRegistrar
	sessions  port.SessionManager
	cart      port.CartManager
}

func NewAccountService(
	registrar port.ClientRegistrar,
	sessions port.SessionManager,
	cart port.CartManager,
) AccountService {
	return AccountService{registrar, sessions, cart}
}

// Register creates the client record. It does not start a session.
func (s AccountService) Register(
	ctx context.Context, r domain.Registration,
) error {
	const op = "AccountService.Register"
	log := slog.With("op", op)

	if err := r.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.registrar.RegisterClient(ctx, r); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("client registered", "email", r.Email)
	return nil
}

func (s AccountService) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	const op = "AccountService.Dashboard"

	if err := s.sessions.RequireAuth(ctx); err != nil {
		return domain.Dashboard{}, fmt.Errorf("%s: %w", op, err)
	}

	user, ok := s.sessions.CurrentUser(ctx)
	if !ok {
		return domain.Dashboard{}, fmt.Errorf(
			"%s: %w: no user in session", op, domain.ErrUnauthorized,
		)
	}

	cart := s.cart.Load(ctx)
	return domain.Dashboard{
		User:  user,
		Cart:  s.cart.ComputeTotals(cart),
		Lines: cart.Lines,
	}, nil
}

// Checkout has no order contract to submit to; the cart is kept as is.
func (s AccountService) Checkout(ctx context.Context) error {
	const op = "AccountService.Checkout"

	if err := s.sessions.RequireAuth(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.cart.Load(ctx).IsEmpty() {
		return fmt.Errorf("%s: %w", op, domain.ErrEmptyCart)
	}
	return fmt.Errorf("%s: %w", op, domain.ErrCheckoutUnavailable)
}
