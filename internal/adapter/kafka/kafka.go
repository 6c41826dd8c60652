package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/niksmo/techstore/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	ErrTooFewOpts = errors.New("too few options")
)

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func activityToSchemaV1(v domain.ActivityEvent) (s schema.ActivityEventV1) {
	s.Type = string(v.Type)
	s.Username = v.Username
	s.ProductID = v.ProductID
	s.ProductName = v.ProductName
	s.Quantity = v.Quantity
	s.OccurredAt = v.OccurredAt.UTC()
	return
}
