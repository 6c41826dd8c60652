package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/niksmo/techstore/internal/core/port"
)

var (
	_ port.SessionManager    = (*SessionService)(nil)
	_ port.SessionRepository = (*SessionStore)(nil)
)

type SessionService struct {
	auth     port.Authenticator
	sessions port.SessionRepository
	activity ActivityPublisher
}

func NewSessionService(
	auth port.Authenticator,
	sessions port.SessionRepository,
	activity ActivityPublisher,
) SessionService {
	return SessionService{auth, sessions, activity}
}

// Login stores the token and the user in one write. A failed login
// leaves any previous session as it was.
func (s SessionService) Login(
	ctx context.Context, creds domain.Credentials,
) (domain.User, error) {
	const op = "SessionService.Login"
	log := slog.With("op", op)

	creds.Email = strings.TrimSpace(creds.Email)
	if err := creds.Validate(); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	session, err := s.auth.Authenticate(ctx, creds)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("logged in", "user", session.User.Email)
	s.activity.publish(ctx, domain.ActivityEvent{
		Type:     domain.ActivitySessionStarted,
		Username: session.User.Email,
	})
	return session.User, nil
}

func (s SessionService) Logout(ctx context.Context) {
	const op = "SessionService.Logout"
	log := slog.With("op", op)

	if err := endSession(ctx, s.sessions, s.activity); err != nil {
		log.Error("failed to clear session", "err", err)
		return
	}
	log.Info("logged out")
}

func (s SessionService) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.sessions.Token(ctx)
	return ok
}

func (s SessionService) CurrentUser(ctx context.Context) (domain.User, bool) {
	const op = "SessionService.CurrentUser"
	log := slog.With("op", op)

	session, ok, err := s.sessions.LoadSession(ctx)
	if err != nil {
		log.Warn("failed to load session", "err", err)
		return domain.User{}, false
	}
	if !ok {
		return domain.User{}, false
	}
	return session.User, true
}

// RequireAuth guards views that need a logged in user.
func (s SessionService) RequireAuth(ctx context.Context) error {
	const op = "SessionService.RequireAuth"

	if !s.IsAuthenticated(ctx) {
		return fmt.Errorf("%s: %w: not logged in", op, domain.ErrUnauthorized)
	}
	return nil
}

// A SessionStore reports every cleared session, including the ones the
// API client drops after the remote service rejects the token.
type SessionStore struct {
	port.SessionRepository
	activity ActivityPublisher
}

func NewSessionStore(
	sessions port.SessionRepository, activity ActivityPublisher,
) SessionStore {
	return SessionStore{sessions, activity}
}

func (s SessionStore) ClearSession(ctx context.Context) error {
	return endSession(ctx, s.SessionRepository, s.activity)
}

// endSession publishes before clearing so the event carries the user.
func endSession(
	ctx context.Context, sessions port.SessionRepository, activity ActivityPublisher,
) error {
	activity.publish(ctx, domain.ActivityEvent{Type: domain.ActivitySessionEnded})
	return sessions.ClearSession(ctx)
}
