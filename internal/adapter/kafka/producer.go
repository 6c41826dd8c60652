package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"time"

	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/niksmo/techstore/internal/core/port"
	"github.com/niksmo/techstore/pkg/retry"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.ActivityProducer = (*ActivityProducer)(nil)

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

// ProducerClientOpt connects to seedBrokers and pings them. tlsCfg may be nil.
func ProducerClientOpt(
	ctx context.Context, seedBrokers []string, topic string, tlsCfg *tls.Config,
) ProducerOpt {
	return func(opts *producerOpts) error {
		kgoOpts := []kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.ProduceRequestTimeout(5 * time.Second),
		}
		if tlsCfg != nil {
			kgoOpts = append(kgoOpts, kgo.DialTLSConfig(tlsCfg))
		}

		cl, err := kgo.NewClient(kgoOpts...)
		if err != nil {
			return err
		}

		retryCfg := retry.RetryConfig{
			MaxAttempts: 3,
			Backoff:     retry.LinearBackoff(500 * time.Millisecond),
		}
		if err := retry.Do(ctx, retryCfg, func() error {
			return cl.Ping(ctx)
		}); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

// ProducerInjectClientOpt uses an existing client.
func ProducerInjectClientOpt(cl ProducerClient) ProducerOpt {
	return func(opts *producerOpts) error {
		if cl == nil {
			return errors.New("producer client is nil")
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

// An ActivityProducer produces [domain.ActivityEvent] keyed by username.
type ActivityProducer struct {
	cl       ProducerClient
	encoder  Encoder
	opPrefix string
}

func NewActivityProducer(opts ...ProducerOpt) (ActivityProducer, error) {
	const op = "NewActivityProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return ActivityProducer{}, opErr(err, op)
		}
	}

	return ActivityProducer{
		cl:       options.cl,
		encoder:  options.encoder,
		opPrefix: "ActivityProducer",
	}, nil
}

func (p ActivityProducer) ProduceActivity(
	ctx context.Context, evt domain.ActivityEvent,
) error {
	const op = "ProduceActivity"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r, err := p.createRecord(evt)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	res := p.cl.ProduceSync(ctx, r)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

func (p ActivityProducer) createRecord(evt domain.ActivityEvent) (*kgo.Record, error) {
	const op = "createRecord"

	s := activityToSchemaV1(evt)
	b, err := p.encoder.Encode(s)
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}
	return &kgo.Record{Key: []byte(s.Username), Value: b}, nil
}

func (p ActivityProducer) Close() {
	const op = "Close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}
