package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/niksmo/techstore/internal/core/port"
)

var _ port.CartRepository = (*CartRepository)(nil)

type (
	// A cartLine is the product object with an extra quantity field.
	cartLine struct {
		IDKey       int64     `json:"id_key"`
		Name        string    `json:"name"`
		Price       float64   `json:"price"`
		Stock       int       `json:"stock"`
		Category    *category `json:"category,omitempty"`
		Image       string    `json:"image,omitempty"`
		Description string    `json:"description,omitempty"`
		Quantity    int       `json:"quantity"`
	}

	category struct {
		IDKey int64  `json:"id_key"`
		Name  string `json:"name"`
	}
)

type CartRepository struct {
	kv port.KVStore
}

func NewCartRepository(kv port.KVStore) CartRepository {
	return CartRepository{kv}
}

// LoadCart returns an empty cart when nothing is stored and
// [ErrCorrupted] when the entry cannot be decoded.
func (r CartRepository) LoadCart(ctx context.Context) (domain.Cart, error) {
	const op = "CartRepository.LoadCart"

	b, ok, err := r.kv.Get(ctx, KeyCart)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok || len(b) == 0 {
		return domain.Cart{}, nil
	}

	var lines []cartLine
	if err := json.Unmarshal(b, &lines); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w: %w", op, ErrCorrupted, err)
	}

	return r.toDomain(lines), nil
}

func (r CartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	const op = "CartRepository.SaveCart"

	b, err := json.Marshal(r.fromDomain(cart))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.kv.Put(ctx, KeyCart, b); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// toDomain merges duplicated products and treats a missing quantity as 1.
func (r CartRepository) toDomain(lines []cartLine) (cart domain.Cart) {
	for _, l := range lines {
		q := l.Quantity
		if q < 1 {
			q = 1
		}
		p := domain.Product{
			ID:          l.IDKey,
			Name:        l.Name,
			Price:       l.Price,
			Stock:       l.Stock,
			Image:       l.Image,
			Description: l.Description,
		}
		if l.Category != nil {
			p.Category = &domain.Category{ID: l.Category.IDKey, Name: l.Category.Name}
		}
		cart = cart.Add(p, q)
	}
	return cart
}

func (r CartRepository) fromDomain(cart domain.Cart) []cartLine {
	lines := make([]cartLine, len(cart.Lines))
	for i, l := range cart.Lines {
		lines[i] = cartLine{
			IDKey:       l.Product.ID,
			Name:        l.Product.Name,
			Price:       l.Product.Price,
			Stock:       l.Product.Stock,
			Image:       l.Product.Image,
			Description: l.Product.Description,
			Quantity:    l.Quantity,
		}
		if c := l.Product.Category; c != nil {
			lines[i].Category = &category{IDKey: c.ID, Name: c.Name}
		}
	}
	return lines
}
