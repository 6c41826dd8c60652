package port

import (
	"context"

	"github.com/niksmo/techstore/internal/core/domain"
)

// A Mutation is one step of an atomic [KVStore.Apply].
type Mutation struct {
	Key    string
	Value  []byte
	Delete bool
}

type KVStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Apply(ctx context.Context, ms ...Mutation) error
	Close()
}

// LoadCart of a CartRepository wraps [domain.ErrCorrupted] when the
// stored entry cannot be decoded.
type CartRepository interface {
	LoadCart(context.Context) (domain.Cart, error)
	SaveCart(context.Context, domain.Cart) error
}

// SessionStorage is the part of the session repository the API client
// needs: reading the bearer token and dropping the session on rejection.
type SessionStorage interface {
	Token(context.Context) (string, bool)
	ClearSession(context.Context) error
}

type SessionRepository interface {
	SessionStorage
	LoadSession(context.Context) (domain.Session, bool, error)
	SaveSession(context.Context, domain.Session) error
}

type Authenticator interface {
	Authenticate(context.Context, domain.Credentials) (domain.Session, error)
}

type CatalogReader interface {
	ListProducts(context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	ListCategories(context.Context) ([]domain.Category, error)
}

type ClientRegistrar interface {
	RegisterClient(context.Context, domain.Registration) error
}

type ActivityProducer interface {
	ProduceActivity(context.Context, domain.ActivityEvent) error
}

type CartManager interface {
	Load(context.Context) domain.Cart
	AddOrIncrement(ctx context.Context, p domain.Product, quantity int) (domain.Cart, error)
	SetQuantity(ctx context.Context, index, quantity int) (domain.Cart, error)
	Remove(ctx context.Context, index int) (domain.Cart, error)
	Clear(context.Context) error
	ComputeTotals(domain.Cart) domain.Totals
}

type SessionManager interface {
	Login(context.Context, domain.Credentials) (domain.User, error)
	Logout(context.Context)
	IsAuthenticated(context.Context) bool
	CurrentUser(context.Context) (domain.User, bool)
	RequireAuth(context.Context) error
}

type Catalog interface {
	Browse(context.Context, domain.Filter) (domain.Listing, error)
	Product(ctx context.Context, id int64) (domain.Product, error)
	AddToCart(ctx context.Context, id int64, quantity int) (domain.Cart, error)
}

type Account interface {
	Register(context.Context, domain.Registration) error
	Dashboard(context.Context) (domain.Dashboard, error)
	Checkout(context.Context) error
}
