package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/niksmo/techstore/config"
	"github.com/niksmo/techstore/internal/adapter"
	"github.com/niksmo/techstore/internal/adapter/cli"
	"github.com/niksmo/techstore/internal/adapter/httpclient"
	"github.com/niksmo/techstore/internal/adapter/kafka"
	"github.com/niksmo/techstore/internal/adapter/storage"
	"github.com/niksmo/techstore/internal/core/port"
	"github.com/niksmo/techstore/internal/core/service"
	"github.com/niksmo/techstore/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type repositories struct {
	store    port.KVStore
	carts    storage.CartRepository
	sessions storage.SessionRepository
}

type coreService struct {
	sessions service.SessionService
	cart     service.CartService
	catalog  service.CatalogService
	account  service.AccountService
}

type App struct {
	ctx      context.Context
	cfg      config.Config
	repos    repositories
	api      httpclient.Client
	producer *kafka.ActivityProducer
	activity service.ActivityPublisher
	service  coreService
	cli      *cli.CLI
}

func New(ctx context.Context, cfg config.Config, opts ...cli.Option) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initStorage()
	app.initOutboundAdapters()
	app.initCoreService()
	app.initInboundAdapters(opts)

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	s := app.cfg.Store
	store, err := storage.Open(app.ctx, s.Driver, s.Path, s.DSN)
	if err != nil {
		app.fallDown(op, err)
	}

	app.repos = repositories{
		store:    store,
		carts:    storage.NewCartRepository(store),
		sessions: storage.NewSessionRepository(store),
	}
}

func (app *App) initOutboundAdapters() {
	const op = "App.initOutboundAdapters"

	app.initActivity()

	api, err := httpclient.New(
		app.cfg.API.BaseURL,
		app.cfg.API.Timeout,
		service.NewSessionStore(app.repos.sessions, app.activity),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.api = api
}

func (app *App) initActivity() {
	const op = "App.initActivity"

	if !app.cfg.Events.Enabled {
		return
	}

	// A broker outage only disables publishing.
	producer, err := app.newActivityProducer()
	if err != nil {
		slog.Warn("activity events disabled", "op", op, "err", err)
		return
	}
	app.producer = &producer
	app.activity = service.NewActivityPublisher(app.producer, app.repos.sessions)
}

func (app *App) newActivityProducer() (kafka.ActivityProducer, error) {
	ev := app.cfg.Events

	var tlsCfg *tls.Config
	if ev.TLS.Enabled() {
		cfg, err := adapter.ClientTLSConfig(ev.TLS.CA, ev.TLS.Cert, ev.TLS.Key)
		if err != nil {
			return kafka.ActivityProducer{}, err
		}
		tlsCfg = cfg
	}

	srOpts := []sr.ClientOpt{sr.URLs(ev.SchemaRegistryURLs...)}
	if tlsCfg != nil {
		srOpts = append(srOpts, sr.HTTPClient(&http.Client{
			Timeout:   app.cfg.API.Timeout,
			Transport: &http.Transport{TLSClientConfig: tlsCfg},
		}))
	}
	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		return kafka.ActivityProducer{}, err
	}

	serde, err := schema.NewSerdeActivityEventV1(
		app.ctx,
		schema.SubjectOpt(ev.Topic+"-value"),
		schema.SchemaIdentifierOpt(schema.NewRegistryIdentifier(srClient)),
	)
	if err != nil {
		return kafka.ActivityProducer{}, err
	}

	return kafka.NewActivityProducer(
		kafka.ProducerClientOpt(app.ctx, ev.SeedBrokers, ev.Topic, tlsCfg),
		kafka.ProducerEncoderOpt(serde),
	)
}

func (app *App) initCoreService() {
	cart := service.NewCartService(app.repos.carts, app.activity)
	sessions := service.NewSessionService(app.api, app.repos.sessions, app.activity)

	app.service = coreService{
		sessions: sessions,
		cart:     cart,
		catalog:  service.NewCatalogService(app.api, cart),
		account:  service.NewAccountService(app.api, sessions, cart),
	}
}

func (app *App) initInboundAdapters(opts []cli.Option) {
	opts = append([]cli.Option{
		cli.CommandOpt("config", "print the effective configuration",
			func(_ context.Context, w io.Writer) error {
				app.cfg.Print(w)
				return nil
			},
		),
	}, opts...)

	app.cli = cli.New(
		app.service.sessions,
		app.service.cart,
		app.service.catalog,
		app.service.account,
		opts...,
	)
}

// Run executes one command line and returns the exit code.
func (app *App) Run(args []string) int {
	return app.cli.Run(app.ctx, args)
}

func (app *App) Close() {
	slog.Debug("application is closing...")

	if app.producer != nil {
		app.producer.Close()
	}
	app.repos.store.Close()

	slog.Debug("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
