package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/niksmo/techstore/internal/core/port"
)

var _ port.SessionRepository = (*SessionRepository)(nil)

type user struct {
	IDKey     int64  `json:"id_key"`
	Name      string `json:"name"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
}

// A SessionRepository keeps the token and user entries. Both are always
// written and deleted in a single [port.KVStore.Apply].
type SessionRepository struct {
	kv port.KVStore
}

func NewSessionRepository(kv port.KVStore) SessionRepository {
	return SessionRepository{kv}
}

func (r SessionRepository) SaveSession(
	ctx context.Context, s domain.Session,
) error {
	const op = "SessionRepository.SaveSession"

	if s.Token == "" {
		return fmt.Errorf("%s: %w: empty token", op, domain.ErrValidation)
	}

	b, err := json.Marshal(r.fromDomain(s.User))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = r.kv.Apply(ctx,
		port.Mutation{Key: KeyToken, Value: []byte(s.Token)},
		port.Mutation{Key: KeyUser, Value: b},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r SessionRepository) ClearSession(ctx context.Context) error {
	const op = "SessionRepository.ClearSession"

	err := r.kv.Apply(ctx,
		port.Mutation{Key: KeyToken, Delete: true},
		port.Mutation{Key: KeyUser, Delete: true},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LoadSession reports false unless both entries are present.
func (r SessionRepository) LoadSession(
	ctx context.Context,
) (domain.Session, bool, error) {
	const op = "SessionRepository.LoadSession"

	token, ok, err := r.kv.Get(ctx, KeyToken)
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok || len(token) == 0 {
		return domain.Session{}, false, nil
	}

	b, ok, err := r.kv.Get(ctx, KeyUser)
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return domain.Session{}, false, nil
	}

	var u user
	if err := json.Unmarshal(b, &u); err != nil {
		return domain.Session{}, false, fmt.Errorf(
			"%s: %w: %w", op, ErrCorrupted, err,
		)
	}

	return domain.Session{Token: string(token), User: r.toDomain(u)}, true, nil
}

func (r SessionRepository) Token(ctx context.Context) (string, bool) {
	const op = "SessionRepository.Token"

	token, ok, err := r.kv.Get(ctx, KeyToken)
	if err != nil {
		slog.Warn("failed to read token", "op", op, "err", err)
		return "", false
	}
	if !ok || len(token) == 0 {
		return "", false
	}
	return string(token), true
}

func (r SessionRepository) toDomain(u user) domain.User {
	return domain.User{
		ID:        u.IDKey,
		Name:      u.Name,
		Lastname:  u.Lastname,
		Email:     u.Email,
		Telephone: u.Telephone,
	}
}

func (r SessionRepository) fromDomain(u domain.User) user {
	return user{
		IDKey:     u.ID,
		Name:      u.Name,
		Lastname:  u.Lastname,
		Email:     u.Email,
		Telephone: u.Telephone,
	}
}
