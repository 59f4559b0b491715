package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/and161185/newsdesk/internal/account"
	"github.com/and161185/newsdesk/internal/api"
	"github.com/and161185/newsdesk/internal/config"
	"github.com/and161185/newsdesk/internal/notify"
	"github.com/and161185/newsdesk/internal/pipeline"
	"github.com/and161185/newsdesk/internal/router"
	"github.com/and161185/newsdesk/internal/session"
)

// client is everything one invocation needs.
type client struct {
	cfg   *config.Client
	log   *zap.Logger
	store *session.Store
	nav   *router.Navigator
	api   *api.API
	flows *account.Flows
	out   io.Writer

	title string
	close func()
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	return zc.Build()
}

// loadConfig reads the environment and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Client, error) {
	if err := config.LoadDotEnv(c.String("env-file")); err != nil {
		return nil, err
	}
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("session") {
		cfg.SessionBackend = c.String("session")
	}
	if c.IsSet("state-dir") {
		cfg.StateDir = c.String("state-dir")
	}
	if c.IsSet("admin-gate") {
		cfg.AdminGate = c.String("admin-gate")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	return cfg, cfg.Validate()
}

func openPersister(ctx context.Context, cfg *config.Client) (session.Persister, func(), error) {
	switch cfg.SessionBackend {
	case config.BackendRedis:
		rdb, err := session.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisPersister(rdb, cfg.CredentialStorageKey), func() { _ = rdb.Close() }, nil
	case config.BackendMemory:
		return session.NewMemoryPersister(), func() {}, nil
	default:
		return session.NewFilePersister(cfg.StatePath(), cfg.CredentialStorageKey), func() {}, nil
	}
}

// connect wires the client stack and restores a persisted session.
func connect(c *cli.Context) (*client, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	log, err := buildLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	p, closeP, err := openPersister(c.Context, cfg)
	if err != nil {
		return nil, err
	}
	cl := &client{cfg: cfg, log: log, out: c.App.Writer}
	cl.close = func() {
		closeP()
		_ = log.Sync()
	}

	cl.store = session.NewStore(p, log)
	pc := pipeline.New(pipeline.Config{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout()},
		cl.store, notify.NewConsole(c.App.ErrWriter, log), nil, log)

	table, err := router.NewTable(router.DefaultRoutes())
	if err != nil {
		cl.close()
		return nil, err
	}
	guard := router.NewGuard(cl.store,
		router.WithAdminGate(router.AdminGate(cfg.AdminGate)),
		router.WithSiteName(cfg.SiteName),
		router.WithTitleSetter(router.TitleFunc(func(t string) { cl.title = t })),
		router.WithLogger(log),
	)
	cl.nav = router.NewNavigator(table, guard, log)
	pc.SetRedirector(cl.nav)

	cl.api = api.New(pc)
	cl.flows = account.New(cl.api.Auth, cl.store, log)

	if _, err := cl.flows.Restore(c.Context); err != nil {
		// An expired credential has been purged by now; carry on anonymous.
		log.Debug("restore session", zap.Error(err))
	}
	return cl, nil
}

// run wraps an action with connect and close.
func run(fn func(c *cli.Context, cl *client) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cl, err := connect(c)
		if err != nil {
			return err
		}
		defer cl.close()
		return fn(c, cl)
	}
}

func (cl *client) printJSON(v any) error {
	enc := json.NewEncoder(cl.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
