package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/niksmo/techstore/internal/core/port"
)

var _ port.Catalog = (*CatalogService)(nil)

type CatalogService struct {
	catalog port.CatalogReader
	cart    port.CartManager
}

func NewCatalogService(
	catalog port.CatalogReader, cart port.CartManager,
) CatalogService {
	return CatalogService{catalog, cart}
}

// Browse lists the products matching f. Categories are best effort:
// when they cannot be fetched the listing has none.
func (s CatalogService) Browse(
	ctx context.Context, f domain.Filter,
) (domain.Listing, error) {
	const op = "CatalogService.Browse"
	log := slog.With("op", op)

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("%s: %w", op, err)
	}

	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		log.Warn("failed to load categories", "err", err)
		categories = nil
	}

	listing := domain.Listing{
		Categories: categories,
		Total:      len(products),
	}
	for _, p := range products {
		if f.Match(p) {
			listing.Products = append(listing.Products, p)
		}
	}

	log.Debug("browsed", "matched", len(listing.Products), "total", listing.Total)
	return listing, nil
}

func (s CatalogService) Product(
	ctx context.Context, id int64,
) (domain.Product, error) {
	const op = "CatalogService.Product"

	p, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// AddToCart refreshes the product from the catalog before adding it, so
// the cart line carries the current price and stock. The quantity already
// in the cart plus quantity may not exceed the stock.
func (s CatalogService) AddToCart(
	ctx context.Context, id int64, quantity int,
) (domain.Cart, error) {
	const op = "CatalogService.AddToCart"

	p, err := s.Product(ctx, id)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	if !p.InStock() {
		return domain.Cart{}, fmt.Errorf(
			"%s: %q: %w", op, p.Name, domain.ErrOutOfStock,
		)
	}

	inCart := 0
	current := s.cart.Load(ctx)
	if i := current.IndexOf(p.ID); i >= 0 {
		inCart = current.Lines[i].Quantity
	}
	if quantity > 0 && inCart+quantity > p.Stock {
		return domain.Cart{}, fmt.Errorf(
			"%s: %q: %d in cart, %d requested, %d in stock: %w",
			op, p.Name, inCart, quantity, p.Stock, domain.ErrStockExceeded,
		)
	}

	cart, err := s.cart.AddOrIncrement(ctx, p, quantity)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}
