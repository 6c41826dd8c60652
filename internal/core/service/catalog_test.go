package service_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/niksmo/techstore/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogService(t *testing.T) {
	products := []domain.Product{laptop, headphones, soldOut}
	categories := []domain.Category{{ID: 1, Name: "Computers"}}

	newService := func(t *testing.T, reader *MockCatalogReader) (service.CatalogService, service.CartService) {
		carts, _ := newRepos(t)
		cart := service.NewCartService(carts, service.ActivityPublisher{})
		return service.NewCatalogService(reader, cart), cart
	}

	t.Run("Browse", func(t *testing.T) {
		reader := new(MockCatalogReader)
		reader.On("ListProducts", mock.Anything).Return(products, nil)
		reader.On("ListCategories", mock.Anything).Return(categories, nil)
		s, _ := newService(t, reader)

		l, err := s.Browse(t.Context(), domain.Filter{Category: domain.Uncategorized})
		require.NoError(t, err)
		assert.Equal(t, 3, l.Total)
		assert.Equal(t, []domain.Product{headphones, soldOut}, l.Products)
		assert.Equal(t, categories, l.Categories)
	})

	t.Run("BrowseWithoutCategories", func(t *testing.T) {
		reader := new(MockCatalogReader)
		reader.On("ListProducts", mock.Anything).Return(products, nil)
		reader.On("ListCategories", mock.Anything).Return(nil, domain.ErrNetwork)
		s, _ := newService(t, reader)

		l, err := s.Browse(t.Context(), domain.Filter{Search: "LAP"})
		require.NoError(t, err)
		assert.Equal(t, []domain.Product{laptop}, l.Products)
		assert.Empty(t, l.Categories)
	})

	t.Run("BrowseNetworkError", func(t *testing.T) {
		reader := new(MockCatalogReader)
		reader.On("ListProducts", mock.Anything).
			Return(nil, fmt.Errorf("Client.do: %w: %w", domain.ErrNetwork, errors.New("refused")))
		s, _ := newService(t, reader)

		_, err := s.Browse(t.Context(), domain.Filter{})
		require.ErrorIs(t, err, domain.ErrNetwork)
	})

	t.Run("AddToCart", func(t *testing.T) {
		reader := new(MockCatalogReader)
		reader.On("GetProduct", mock.Anything, laptop.ID).Return(laptop, nil)
		s, cart := newService(t, reader)

		c, err := s.AddToCart(t.Context(), laptop.ID, 2)
		require.NoError(t, err)
		require.Equal(t, 1, c.Len())
		assert.Equal(t, 2, c.Lines[0].Quantity)
		assert.Equal(t, c, cart.Load(t.Context()))
	})

	t.Run("AddOutOfStock", func(t *testing.T) {
		reader := new(MockCatalogReader)
		reader.On("GetProduct", mock.Anything, soldOut.ID).Return(soldOut, nil)
		s, cart := newService(t, reader)

		_, err := s.AddToCart(t.Context(), soldOut.ID, 1)
		require.ErrorIs(t, err, domain.ErrOutOfStock)
		assert.True(t, cart.Load(t.Context()).IsEmpty())
	})

	t.Run("AddBeyondStock", func(t *testing.T) {
		reader := new(MockCatalogReader)
		reader.On("GetProduct", mock.Anything, laptop.ID).Return(laptop, nil)
		s, cart := newService(t, reader)

		_, err := s.AddToCart(t.Context(), laptop.ID, 99)
		require.ErrorIs(t, err, domain.ErrStockExceeded)
		assert.True(t, cart.Load(t.Context()).IsEmpty())
	})

	t.Run("AddBeyondStockCountsCartLine", func(t *testing.T) {
		reader := new(MockCatalogReader)
		reader.On("GetProduct", mock.Anything, laptop.ID).Return(laptop, nil)
		s, cart := newService(t, reader)

		_, err := s.AddToCart(t.Context(), laptop.ID, 2)
		require.NoError(t, err)

		_, err = s.AddToCart(t.Context(), laptop.ID, 2)
		require.ErrorIs(t, err, domain.ErrStockExceeded)
		assert.Equal(t, 2, cart.Load(t.Context()).Lines[0].Quantity)

		c, err := s.AddToCart(t.Context(), laptop.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, laptop.Stock, c.Lines[0].Quantity)
	})

	t.Run("AddMissingProduct", func(t *testing.T) {
		reader := new(MockCatalogReader)
		reader.On("GetProduct", mock.Anything, int64(99)).
			Return(domain.Product{}, &domain.APIError{Kind: domain.ErrNotFound, Status: 404})
		s, _ := newService(t, reader)

		_, err := s.AddToCart(t.Context(), 99, 1)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
