package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/niksmo/techstore/internal/core/port"
)

var (
	_ port.Authenticator   = (*Client)(nil)
	_ port.CatalogReader   = (*Client)(nil)
	_ port.ClientRegistrar = (*Client)(nil)
)

const DefaultTimeout = 10 * time.Second

// A Client talks to the remote catalog and account service.
//
// Requests made while a session token is stored carry it as a bearer
// token. When such a request is answered with 401 the session is
// cleared before the error is returned.
type Client struct {
	baseURL  *url.URL
	hc       *http.Client
	sessions port.SessionStorage
}

func New(
	baseURL string, timeout time.Duration, sessions port.SessionStorage,
) (Client, error) {
	const op = "httpclient.New"

	u, err := url.Parse(baseURL)
	if err != nil {
		return Client{}, fmt.Errorf("%s: %w", op, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Client{}, fmt.Errorf("%s: unsupported scheme %q", op, u.Scheme)
	}
	if sessions == nil {
		return Client{}, errors.New(op + ": session storage is nil")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return Client{
		baseURL:  u,
		hc:       &http.Client{Timeout: timeout},
		sessions: sessions,
	}, nil
}

type request struct {
	method string
	path   []string
	body   any
	public bool
}

func (c Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "Client.ListProducts"

	var ps []Product
	err := c.do(ctx, request{method: http.MethodGet, path: []string{"products"}}, &ps)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res := make([]domain.Product, len(ps))
	for i, p := range ps {
		res[i] = c.productToDomain(p)
	}
	return res, nil
}

func (c Client) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	const op = "Client.GetProduct"

	var p Product
	req := request{
		method: http.MethodGet,
		path:   []string{"products", strconv.FormatInt(id, 10)},
	}
	if err := c.do(ctx, req, &p); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return c.productToDomain(p), nil
}

func (c Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "Client.ListCategories"

	var cs []Category
	err := c.do(ctx, request{method: http.MethodGet, path: []string{"categories"}}, &cs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res := make([]domain.Category, len(cs))
	for i, v := range cs {
		res[i] = domain.Category{ID: v.IDKey, Name: v.Name}
	}
	return res, nil
}

func (c Client) RegisterClient(ctx context.Context, r domain.Registration) error {
	const op = "Client.RegisterClient"

	req := request{
		method: http.MethodPost,
		path:   []string{"clients"},
		body: ClientRequest{
			Name:      r.Name,
			Lastname:  r.Lastname,
			Email:     r.Email,
			Telephone: r.Telephone,
		},
		public: true,
	}
	if err := c.do(ctx, req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Authenticate never sends the stored token, so a rejected login does
// not end an existing session.
func (c Client) Authenticate(
	ctx context.Context, creds domain.Credentials,
) (domain.Session, error) {
	const op = "Client.Authenticate"

	req := request{
		method: http.MethodPost,
		path:   []string{"auth", "login"},
		body:   LoginRequest{Email: creds.Email, Password: creds.Password},
		public: true,
	}

	var res LoginResponse
	if err := c.do(ctx, req, &res); err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if res.Token == "" || res.User == nil {
		return domain.Session{}, fmt.Errorf(
			"%s: %w: token or user is missing", op, ErrMalformedResponse,
		)
	}

	return domain.Session{Token: res.Token, User: c.userToDomain(*res.User)}, nil
}

func (c Client) do(ctx context.Context, req request, out any) error {
	const op = "Client.do"

	endpoint := c.baseURL.JoinPath(req.path...).String()
	log := slog.With("op", op, "method", req.method, "url", endpoint)

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	var withToken bool
	if !req.public {
		if token, ok := c.sessions.Token(ctx); ok {
			httpReq.Header.Set("Authorization", "Bearer "+token)
			withToken = true
		}
	}

	res, err := c.hc.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", op, ctxErr)
		}
		log.Warn("remote service is unreachable", "err", err)
		return fmt.Errorf("%s: %w: %w", op, domain.ErrNetwork, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			log.Debug("failed to close response body", "err", err)
		}
	}()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := newAPIError(res)
		log.Warn("request rejected", "status", res.StatusCode, "detail", apiErr.Detail)
		if res.StatusCode == http.StatusUnauthorized && withToken {
			c.dropSession(ctx)
		}
		return fmt.Errorf("%s: %w", op, apiErr)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrMalformedResponse, err)
	}
	return nil
}

func (c Client) dropSession(ctx context.Context) {
	const op = "Client.dropSession"
	log := slog.With("op", op)

	if err := c.sessions.ClearSession(ctx); err != nil {
		log.Error("failed to clear rejected session", "err", err)
		return
	}
	log.Info("session rejected by remote service, logged out")
}

func (Client) productToDomain(p Product) domain.Product {
	dp := domain.Product{
		ID:    p.IDKey,
		Name:  p.Name,
		Price: p.Price,
		Stock: p.Stock,
	}
	if p.Category != nil {
		dp.Category = &domain.Category{ID: p.Category.IDKey, Name: p.Category.Name}
	}
	if p.Image != nil {
		dp.Image = *p.Image
	}
	if p.Description != nil {
		dp.Description = *p.Description
	}
	return dp
}

func (Client) userToDomain(u User) domain.User {
	return domain.User{
		ID:        u.IDKey,
		Name:      u.Name,
		Lastname:  u.Lastname,
		Email:     u.Email,
		Telephone: u.Telephone,
	}
}
