package service_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/niksmo/techstore/internal/adapter/storage"
	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/niksmo/techstore/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCartService(t *testing.T) {
	t.Run("AddOrIncrement", func(t *testing.T) {
		ctx := t.Context()
		carts, _ := newRepos(t)
		s := service.NewCartService(carts, service.ActivityPublisher{})

		_, err := s.AddOrIncrement(ctx, laptop, 1)
		require.NoError(t, err)
		_, err = s.AddOrIncrement(ctx, headphones, 2)
		require.NoError(t, err)
		cart, err := s.AddOrIncrement(ctx, laptop, 2)
		require.NoError(t, err)

		require.Equal(t, 2, cart.Len())
		assert.Equal(t, 3, cart.Lines[0].Quantity)
		assert.Equal(t, cart, s.Load(ctx))
	})

	t.Run("RejectsQuantityBelowOne", func(t *testing.T) {
		carts, _ := newRepos(t)
		s := service.NewCartService(carts, service.ActivityPublisher{})

		_, err := s.AddOrIncrement(t.Context(), laptop, 0)
		require.ErrorIs(t, err, domain.ErrValidation)
		assert.True(t, s.Load(t.Context()).IsEmpty())
	})

	t.Run("SetQuantity", func(t *testing.T) {
		ctx := t.Context()
		carts, _ := newRepos(t)
		s := service.NewCartService(carts, service.ActivityPublisher{})
		_, err := s.AddOrIncrement(ctx, laptop, 1)
		require.NoError(t, err)

		cart, err := s.SetQuantity(ctx, 0, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, cart.Lines[0].Quantity)

		for _, args := range [][2]int{{0, 0}, {0, -3}, {1, 2}, {-1, 2}} {
			cart, err = s.SetQuantity(ctx, args[0], args[1])
			require.NoError(t, err)
			assert.Equal(t, 4, cart.Lines[0].Quantity)
		}
		assert.Equal(t, 4, s.Load(ctx).Lines[0].Quantity)
	})

	t.Run("Remove", func(t *testing.T) {
		ctx := t.Context()
		carts, _ := newRepos(t)
		s := service.NewCartService(carts, service.ActivityPublisher{})
		_, _ = s.AddOrIncrement(ctx, laptop, 1)
		_, _ = s.AddOrIncrement(ctx, headphones, 1)

		cart, err := s.Remove(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, 1, cart.Len())
		assert.Equal(t, headphones.ID, cart.Lines[0].Product.ID)

		cart, err = s.Remove(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, 1, cart.Len())
	})

	t.Run("Clear", func(t *testing.T) {
		ctx := t.Context()
		carts, _ := newRepos(t)
		s := service.NewCartService(carts, service.ActivityPublisher{})
		_, _ = s.AddOrIncrement(ctx, laptop, 1)

		require.NoError(t, s.Clear(ctx))
		assert.True(t, s.Load(ctx).IsEmpty())
	})

	t.Run("LoadCorrupted", func(t *testing.T) {
		kv, err := storage.NewMemLevelDBStore()
		require.NoError(t, err)
		t.Cleanup(kv.Close)
		require.NoError(t, kv.Put(t.Context(), storage.KeyCart, []byte("oops")))

		s := service.NewCartService(storage.NewCartRepository(kv), service.ActivityPublisher{})
		assert.True(t, s.Load(t.Context()).IsEmpty())

		cart, err := s.AddOrIncrement(t.Context(), laptop, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, cart.Len())
	})

	t.Run("ReadFailsKeepsCart", func(t *testing.T) {
		ctx := t.Context()
		errDisk := errors.New("read error")
		kv, err := storage.NewMemLevelDBStore()
		require.NoError(t, err)
		t.Cleanup(kv.Close)

		flaky := &flakyKV{KVStore: kv, err: errDisk}
		s := service.NewCartService(storage.NewCartRepository(flaky), service.ActivityPublisher{})
		_, err = s.AddOrIncrement(ctx, laptop, 2)
		require.NoError(t, err)
		_, err = s.AddOrIncrement(ctx, headphones, 1)
		require.NoError(t, err)

		mutations := map[string]func() error{
			"AddOrIncrement": func() error {
				_, err := s.AddOrIncrement(ctx, laptop, 1)
				return err
			},
			"SetQuantity": func() error {
				_, err := s.SetQuantity(ctx, 0, 5)
				return err
			},
			"Remove": func() error {
				_, err := s.Remove(ctx, 1)
				return err
			},
		}
		for name, mutate := range mutations {
			t.Run(name, func(t *testing.T) {
				flaky.failures = 1
				require.ErrorIs(t, mutate(), errDisk)

				cart := s.Load(ctx)
				require.Equal(t, 2, cart.Len())
				assert.Equal(t, laptop.ID, cart.Lines[0].Product.ID)
				assert.Equal(t, 2, cart.Lines[0].Quantity)
				assert.Equal(t, headphones.ID, cart.Lines[1].Product.ID)
				assert.Equal(t, 1, cart.Lines[1].Quantity)
			})
		}
	})

	t.Run("SaveFails", func(t *testing.T) {
		errDisk := errors.New("disk full")
		carts, _ := newRepos(t)
		s := service.NewCartService(
			failingCarts{CartRepository: carts, err: errDisk}, service.ActivityPublisher{},
		)

		_, err := s.AddOrIncrement(t.Context(), laptop, 1)
		require.ErrorIs(t, err, errDisk)
		require.ErrorIs(t, s.Clear(t.Context()), errDisk)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		carts, _ := newRepos(t)
		s := service.NewCartService(carts, service.ActivityPublisher{})
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := s.AddOrIncrement(ctx, laptop, 1)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("ComputeTotals", func(t *testing.T) {
		s := service.NewCartService(nil, service.ActivityPublisher{})
		tot := s.ComputeTotals(domain.Cart{}.Add(laptop, 1))
		assert.Equal(t, "29.00", tot.Total.StringFixed(2))
	})
}

func TestCartServiceAddSequence(t *testing.T) {
	ctx := t.Context()
	carts, _ := newRepos(t)
	s := service.NewCartService(carts, service.ActivityPublisher{})

	catalog := []domain.Product{
		laptop,
		headphones,
		{ID: 7, Name: "Mouse", Price: 5, Stock: 100},
		{ID: 9, Name: "Monitor", Price: 120, Stock: 4},
	}
	rnd := rand.New(rand.NewPCG(7, 11))

	want := map[int64]int{}
	var order []int64
	for range 200 {
		p := catalog[rnd.IntN(len(catalog))]
		qty := 1 + rnd.IntN(3)
		if _, ok := want[p.ID]; !ok {
			order = append(order, p.ID)
		}
		want[p.ID] += qty

		_, err := s.AddOrIncrement(ctx, p, qty)
		require.NoError(t, err)
	}

	cart := s.Load(ctx)
	require.Equal(t, len(order), cart.Len())
	seen := map[int64]bool{}
	for i, l := range cart.Lines {
		assert.False(t, seen[l.Product.ID], "product %d listed twice", l.Product.ID)
		seen[l.Product.ID] = true
		assert.Equal(t, order[i], l.Product.ID)
		assert.Equal(t, want[l.Product.ID], l.Quantity)
	}
}

func TestCartServiceActivity(t *testing.T) {
	ctx := t.Context()
	carts, sessions := newRepos(t)
	require.NoError(t, sessions.SaveSession(ctx, ana))

	producer := new(MockActivityProducer)
	producer.On("ProduceActivity", mock.Anything, mock.MatchedBy(func(e domain.ActivityEvent) bool {
		return e.Type == domain.ActivityLineAdded &&
			e.Username == "ana@test.com" &&
			e.ProductID == laptop.ID &&
			e.Quantity == 2 &&
			!e.OccurredAt.IsZero()
	})).Return(nil).Once()
	producer.On("ProduceActivity", mock.Anything, mock.MatchedBy(func(e domain.ActivityEvent) bool {
		return e.Type == domain.ActivityCartCleared
	})).Return(errors.New("broker down")).Once()

	s := service.NewCartService(carts, service.NewActivityPublisher(producer, sessions))

	_, err := s.AddOrIncrement(ctx, laptop, 2)
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx))

	producer.AssertExpectations(t)
}
