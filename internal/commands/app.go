package commands

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/finwatch-dev/finwatch/internal/aggregator"
	"github.com/finwatch-dev/finwatch/internal/config"
	"github.com/finwatch-dev/finwatch/internal/logging"
	"github.com/finwatch-dev/finwatch/internal/render"
	"github.com/finwatch-dev/finwatch/internal/store"
	"github.com/finwatch-dev/finwatch/internal/sync"
)

// app bundles the wired-up collaborators shared by the run, accounts and
// buffer commands. Everything is constructed once here and passed down;
// there are no package-level singletons.
type app struct {
	cfg        *config.Config
	log        *zap.Logger
	aggregator *aggregator.Client
	accounts   *store.AccountStore
	txns       *store.TransactionStore
	engine     *sync.Engine
	builder    *render.Builder
}

func openApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	token, err := config.ReadSecret(cfg.Aggregator.TokenFile)
	if err != nil {
		return nil, err
	}
	if cfg.Aggregator.BaseURL == "" {
		return nil, fmt.Errorf("aggregator.base_url is not configured")
	}
	client := aggregator.NewClient(cfg.Aggregator.BaseURL, token)

	txns, err := store.NewTransactionStore(cfg.Store.DBPath)
	if err != nil {
		return nil, err
	}

	accounts := store.NewAccountStore()
	engine := sync.NewEngine(client, accounts, txns, cfg.Aggregator.WindowDays, log.Named("sync"))
	builder := render.NewBuilder(engine, accounts)

	return &app{
		cfg:        cfg,
		log:        log,
		aggregator: client,
		accounts:   accounts,
		txns:       txns,
		engine:     engine,
		builder:    builder,
	}, nil
}

func (a *app) Close() {
	if err := a.txns.Close(); err != nil {
		a.log.Warn("closing transaction store", zap.Error(err))
	}
	_ = a.log.Sync()
}
