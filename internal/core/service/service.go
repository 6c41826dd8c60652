package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/niksmo/techstore/internal/core/port"
)

const anonymous = "anonymous"

// An ActivityPublisher sends cart and session events when a producer is set.
//
// The zero value drops every event.
type ActivityPublisher struct {
	producer port.ActivityProducer
	sessions port.SessionRepository
	now      func() time.Time
}

func NewActivityPublisher(
	producer port.ActivityProducer, sessions port.SessionRepository,
) ActivityPublisher {
	return ActivityPublisher{
		producer: producer,
		sessions: sessions,
		now:      time.Now,
	}
}

// publish never fails the caller: a lost event is only logged.
func (p ActivityPublisher) publish(ctx context.Context, evt domain.ActivityEvent) {
	const op = "ActivityPublisher.publish"
	log := slog.With("op", op)

	if p.producer == nil {
		return
	}

	if evt.Username == "" {
		evt.Username = p.username(ctx)
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = p.now()
	}

	if err := p.producer.ProduceActivity(ctx, evt); err != nil {
		log.Warn("failed to publish activity", "type", evt.Type, "err", err)
	}
}

func (p ActivityPublisher) username(ctx context.Context) string {
	if p.sessions == nil {
		return anonymous
	}
	s, ok, err := p.sessions.LoadSession(ctx)
	if err != nil || !ok || s.User.Email == "" {
		return anonymous
	}
	return s.User.Email
}

func lineEvent(t domain.ActivityType, l domain.CartLine) domain.ActivityEvent {
	return domain.ActivityEvent{
		Type:        t,
		ProductID:   l.Product.ID,
		ProductName: l.Product.Name,
		Quantity:    l.Quantity,
	}
}
