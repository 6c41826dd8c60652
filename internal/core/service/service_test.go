package service_test

import (
	"context"
	"testing"

	"github.com/niksmo/techstore/internal/adapter/storage"
	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/niksmo/techstore/internal/core/port"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(
	ctx context.Context, c domain.Credentials,
) (domain.Session, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(domain.Session), args.Error(1)
}

type MockCatalogReader struct {
	mock.Mock
}

func (m *MockCatalogReader) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockCatalogReader) GetProduct(
	ctx context.Context, id int64,
) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockCatalogReader) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]domain.Category)
	return cs, args.Error(1)
}

type MockRegistrar struct {
	mock.Mock
}

func (m *MockRegistrar) RegisterClient(ctx context.Context, r domain.Registration) error {
	return m.Called(ctx, r).Error(0)
}

type MockActivityProducer struct {
	mock.Mock
}

func (m *MockActivityProducer) ProduceActivity(
	ctx context.Context, evt domain.ActivityEvent,
) error {
	return m.Called(ctx, evt).Error(0)
}

// A failingCarts fails every write.
type failingCarts struct {
	port.CartRepository
	err error
}

func (f failingCarts) SaveCart(context.Context, domain.Cart) error {
	return f.err
}

// A flakyKV fails the next failures reads.
type flakyKV struct {
	port.KVStore
	failures int
	err      error
}

func (f *flakyKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failures > 0 {
		f.failures--
		return nil, false, f.err
	}
	return f.KVStore.Get(ctx, key)
}

var (
	laptop = domain.Product{
		ID: 1, Name: "Laptop", Price: 25, Stock: 3,
		Category: &domain.Category{ID: 1, Name: "Computers"},
	}
	headphones = domain.Product{ID: 2, Name: "Headphones", Price: 10, Stock: 5}
	soldOut    = domain.Product{ID: 3, Name: "Console", Price: 300, Stock: 0}

	ana = domain.Session{
		Token: "tok-ana",
		User:  domain.User{ID: 1, Name: "Ana", Lastname: "Diaz", Email: "ana@test.com"},
	}
)

func newRepos(t *testing.T) (storage.CartRepository, storage.SessionRepository) {
	t.Helper()
	kv, err := storage.NewMemLevelDBStore()
	require.NoError(t, err)
	t.Cleanup(kv.Close)
	return storage.NewCartRepository(kv), storage.NewSessionRepository(kv)
}
