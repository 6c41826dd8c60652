package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/niksmo/techstore/config"
	"github.com/niksmo/techstore/internal/adapter"
	"github.com/niksmo/techstore/pkg/sigctx"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	partitions        = 3
	replicationFactor = 3
	retention         = 7 * 24 * time.Hour
)

func main() {
	os.Exit(run())
}

func run() int {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg, _ := config.Load(os.Args[1:])
	ev := cfg.Events
	if len(ev.SeedBrokers) == 0 {
		printFail(errors.New("events.seed_brokers is empty"))
		return 2
	}

	var tlsCfg *tls.Config
	if ev.TLS.Enabled() {
		var err error
		tlsCfg, err = adapter.ClientTLSConfig(ev.TLS.CA, ev.TLS.Cert, ev.TLS.Key)
		if err != nil {
			printFail(err)
			return 2
		}
	}

	cl, err := createClient(ev.SeedBrokers, tlsCfg)
	if err != nil {
		printFail(err)
		return 2
	}
	defer cl.Close()

	fmt.Printf("initializing topic %q...\n", ev.Topic)
	defer printComplete(time.Now())

	if err := makeTopics(sigCtx, cl, ev.Topic); err != nil {
		printFail(err)
		return 1
	}
	return 0
}

func createClient(seedBrokers []string, tlsCfg *tls.Config) (*kadm.Client, error) {
	opts := []kgo.Opt{kgo.SeedBrokers(seedBrokers...)}
	if tlsCfg != nil {
		opts = append(opts, kgo.DialTLSConfig(tlsCfg))
	}
	return kadm.NewOptClient(opts...)
}

func makeTopics(ctx context.Context, cl *kadm.Client, topics ...string) error {
	var (
		cleanupPolicy = "delete"
		minISR        = "2"
		retentionMs   = strconv.FormatInt(retention.Milliseconds(), 10)
	)

	config := map[string]*string{
		"cleanup.policy":      &cleanupPolicy,
		"min.insync.replicas": &minISR,
		"retention.ms":        &retentionMs,
	}

	responses, err := cl.CreateTopics(
		ctx,
		partitions,
		replicationFactor,
		config,
		topics...,
	)
	if err != nil {
		return err
	}

	var errs []error
	for _, res := range responses.Sorted() {
		if res.Err != nil {
			if errors.Is(res.Err, kerr.TopicAlreadyExists) {
				fmt.Printf("topic: %q already exists\n", res.Topic)
			} else {
				errs = append(errs, res.Err)
			}
			continue
		}
		fmt.Printf("topic: %q successfully created\n", res.Topic)
	}

	return errors.Join(errs...)
}

func printComplete(start time.Time) {
	fmt.Printf("\ncomplete in %s\n", time.Since(start))
}

func printFail(err error) {
	fmt.Printf("failed to create topics: \n%s\n", err)
}
