package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/niksmo/techstore/internal/core/port"
)

var _ port.CartManager = (*CartService)(nil)

type CartService struct {
	carts    port.CartRepository
	activity ActivityPublisher
}

func NewCartService(
	carts port.CartRepository, activity ActivityPublisher,
) CartService {
	return CartService{carts, activity}
}

// Load returns the stored cart, or an empty one when the entry is
// missing or unreadable.
func (s CartService) Load(ctx context.Context) domain.Cart {
	const op = "CartService.Load"
	log := slog.With("op", op)

	cart, err := s.carts.LoadCart(ctx)
	if err != nil {
		log.Warn("cart entry is unreadable, starting empty", "err", err)
		return domain.Cart{}
	}
	return cart
}

func (s CartService) AddOrIncrement(
	ctx context.Context, p domain.Product, quantity int,
) (domain.Cart, error) {
	const op = "CartService.AddOrIncrement"

	if quantity < 1 {
		return domain.Cart{}, fmt.Errorf(
			"%s: %w", op, domain.NewValidationError("quantity must be at least 1"),
		)
	}

	prev, err := s.loadForUpdate(ctx)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	cart := prev.Add(p, quantity)
	if err := s.save(ctx, cart); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	line := cart.Lines[cart.IndexOf(p.ID)]
	evt := lineEvent(domain.ActivityLineAdded, line)
	evt.Quantity = quantity
	s.activity.publish(ctx, evt)

	return cart, nil
}

// SetQuantity leaves the cart untouched when quantity < 1 or the index
// is out of range.
func (s CartService) SetQuantity(
	ctx context.Context, index, quantity int,
) (domain.Cart, error) {
	const op = "CartService.SetQuantity"

	prev, err := s.loadForUpdate(ctx)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	cart, ok := prev.SetQuantity(index, quantity)
	if !ok {
		return cart, nil
	}

	if err := s.save(ctx, cart); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	s.activity.publish(ctx, lineEvent(domain.ActivityQuantitySet, cart.Lines[index]))
	return cart, nil
}

func (s CartService) Remove(ctx context.Context, index int) (domain.Cart, error) {
	const op = "CartService.Remove"

	prev, err := s.loadForUpdate(ctx)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	cart, ok := prev.Remove(index)
	if !ok {
		return cart, nil
	}

	if err := s.save(ctx, cart); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	s.activity.publish(ctx, lineEvent(domain.ActivityLineRemoved, prev.Lines[index]))
	return cart, nil
}

func (s CartService) Clear(ctx context.Context) error {
	const op = "CartService.Clear"

	if err := s.save(ctx, domain.Cart{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.activity.publish(ctx, domain.ActivityEvent{Type: domain.ActivityCartCleared})
	return nil
}

func (CartService) ComputeTotals(cart domain.Cart) domain.Totals {
	return domain.ComputeTotals(cart)
}

// loadForUpdate treats only an unreadable entry as an empty cart.
// Other read errors abort the mutation.
func (s CartService) loadForUpdate(ctx context.Context) (domain.Cart, error) {
	const op = "CartService.loadForUpdate"

	cart, err := s.carts.LoadCart(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCorrupted) {
			slog.Warn("replacing unreadable cart entry", "op", op, "err", err)
			return domain.Cart{}, nil
		}
		return domain.Cart{}, err
	}
	return cart, nil
}

func (s CartService) save(ctx context.Context, cart domain.Cart) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.carts.SaveCart(ctx, cart)
}
