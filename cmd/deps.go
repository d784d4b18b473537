package main

import (
	"context"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"

	"github.com/sells-group/dealscore/internal/benchmark"
	"github.com/sells-group/dealscore/internal/scorer"
	"github.com/sells-group/dealscore/internal/store"
	notionpkg "github.com/sells-group/dealscore/pkg/notion"
	sfpkg "github.com/sells-group/dealscore/pkg/salesforce"
)

func initStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore opens the configured store and applies migrations.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func initScorer() (*scorer.Scorer, error) {
	tables, err := scorer.LoadTables(cfg.Scorer.TablesFile)
	if err != nil {
		return nil, err
	}
	return scorer.NewScorer(cfg.Scorer, tables)
}

func initBenchmarker() (*benchmark.Benchmarker, error) {
	ref, err := benchmark.LoadReference(cfg.Benchmark.ReferenceFile)
	if err != nil {
		return nil, err
	}
	return benchmark.NewBenchmarker(cfg.Benchmark, ref)
}

// newSalesforceClient is swapped out in tests.
var newSalesforceClient = initSalesforce

func initSalesforce() (sfpkg.Client, error) {
	if err := cfg.Validate("salesforce"); err != nil {
		return nil, err
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf, sfpkg.WithRateLimit(cfg.Salesforce.RateLimit)), nil
}

// newNotionClient is swapped out in tests.
var newNotionClient = initNotion

func initNotion() (notionpkg.Client, error) {
	if err := cfg.Validate("notion"); err != nil {
		return nil, err
	}
	return notionpkg.NewClient(cfg.Notion.Token), nil
}
