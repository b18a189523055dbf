package cmd

import (
	"context"
	"fmt"

	"github.com/aqlanhadi/kwgn-sms/config"
	"github.com/aqlanhadi/kwgn-sms/extractor"
	"github.com/aqlanhadi/kwgn-sms/extractor/common"
	"github.com/aqlanhadi/kwgn-sms/integrations/postgres"
	"github.com/aqlanhadi/kwgn-sms/integrations/sqlite"
	"github.com/aqlanhadi/kwgn-sms/logger"
	"github.com/aqlanhadi/kwgn-sms/pipeline"
	"github.com/aqlanhadi/kwgn-sms/store"
	"github.com/spf13/afero"
)

// openSyncer opens the configured store and builds the pipeline on top of it.
// The returned func releases the store.
func openSyncer(ctx context.Context, cfg *config.Config) (*pipeline.Syncer, func(), error) {
	compiler := extractor.NewCompiler(log)
	compiler.Workers = cfg.Compile.Workers

	opts := pipeline.Options{
		Accounts: cfg.Accounts,
		Window:   cfg.DuplicateWindow,
		Compiler: compiler,
		Log:      log,
	}

	var (
		s       store.Store
		cleanup = func() {}
	)
	switch cfg.Store.Driver {
	case config.DriverMemory:
		s = store.NewMemory()
	case config.DriverFile:
		f, err := store.NewFile(afero.NewOsFs(), cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		s = f
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Store.Path, logger.WithFields(log, map[string]interface{}{"store": cfg.Store.Path}))
		if err != nil {
			return nil, nil, err
		}
		s = db
		cleanup = func() { db.Close() }
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.Store.DSN, cfg.Store.MaxConns)
		if err != nil {
			return nil, nil, err
		}
		s = db
		cleanup = db.Close
		opts.AfterSync = func(ctx context.Context, accounts []common.Account, txs []common.Transaction) error {
			_, err := db.Mirror(ctx, accounts, txs)
			return err
		}
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	log.Debug().Str("driver", cfg.Store.Driver).Msg("store opened")
	return pipeline.New(s, opts), cleanup, nil
}
