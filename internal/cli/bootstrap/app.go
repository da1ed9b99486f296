// Package bootstrap собирает зависимости клиента из конфигурации.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"AidDesk/internal/cli/amount"
	"AidDesk/internal/cli/api"
	"AidDesk/internal/cli/auth"
	"AidDesk/internal/cli/draft"
	"AidDesk/internal/cli/formstate"
	"AidDesk/internal/cli/pending"
	"AidDesk/internal/cli/repo"
	fsrepo "AidDesk/internal/cli/repo/fs"
	"AidDesk/internal/cli/store"
	"AidDesk/internal/config"
	"AidDesk/internal/metrics"
)

// App — всё, что нужно командам клиента.
type App struct {
	Cfg       *config.Config
	Log       *zap.SugaredLogger
	Tokens    repo.TokenStore
	API       *api.Client
	Durable   store.KeyValueStore
	Session   store.KeyValueStore
	Storage   *draft.Storage
	Bridge    *pending.Bridge
	Scheduler *amount.QueueScheduler
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Form      *formstate.Session

	closers []func() error
}

// Open открывает хранилища и создаёт форму. Mount формы не выполняется.
func Open(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*App, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	a := &App{Cfg: cfg, Log: log}

	durable, err := store.OpenDurable(cfg.ClientDBPath)
	if err != nil {
		return nil, fmt.Errorf("open draft store: %w", err)
	}
	a.Durable = durable
	a.closers = append(a.closers, durable.Close)

	if cfg.SessionRedisAddr != "" {
		rs := store.NewRedisStore(cfg.SessionRedisAddr, cfg.SessionID, cfg.SessionTTL)
		if err := rs.Ping(ctx); err != nil {
			_ = a.Close()
			_ = rs.Close()
			return nil, fmt.Errorf("connect session redis: %w", err)
		}
		a.Session = rs
		a.closers = append(a.closers, rs.Close)
	} else {
		ms := store.NewMemoryStore()
		a.Session = ms
		a.closers = append(a.closers, ms.Close)
	}

	a.Tokens = fsrepo.AuthFSStore{Path: cfg.TokenFile}
	a.API = api.NewClient(cfg.ServerURL, a.Tokens, nil, log)
	a.Storage = draft.New(a.Durable, a.Session, log)
	a.Bridge = pending.New(a.Durable, log)
	a.Scheduler = &amount.QueueScheduler{}
	a.Registry = prometheus.NewRegistry()
	a.Metrics = metrics.New(a.Registry)
	a.Form = formstate.New(formstate.Deps{
		API:        a.API,
		Storage:    a.Storage,
		Bridge:     a.Bridge,
		Scheduler:  a.Scheduler,
		Metrics:    a.Metrics,
		Logger:     log,
		Debounce:   cfg.Debounce(),
		ReturnPath: cfg.ReturnPath,
	})

	if tok, err := a.Tokens.Load(); err == nil {
		if c, err := auth.Inspect(tok); err == nil {
			log.Infow("stored token", "subject", c.Subject, "role", c.Role, "expired", c.Expired(time.Now()))
		} else {
			log.Warnw("stored token is unreadable", "error", err)
		}
	}
	log.Infow("client ready", "server", cfg.ServerURL, "redisSession", cfg.SessionRedisAddr != "")
	return a, nil
}

// Close записывает отложенный черновик и закрывает хранилища.
func (a *App) Close() error {
	if a.Form != nil {
		a.Form.Flush()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
