package main

import (
	"context"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/cognicore/obisquery/internal/llm"
	"github.com/cognicore/obisquery/internal/obisapi"
	"github.com/cognicore/obisquery/internal/worms"
	"github.com/cognicore/obisquery/pkg/obis"
	"github.com/cognicore/obisquery/pkg/obis/catalog"
	"github.com/cognicore/obisquery/pkg/obis/catalog/memstore"
	"github.com/cognicore/obisquery/pkg/obis/catalog/sqlite"
	"github.com/cognicore/obisquery/pkg/obis/config"
	"github.com/cognicore/obisquery/pkg/obis/embed"
	"github.com/cognicore/obisquery/pkg/obis/lexicon"
	"github.com/cognicore/obisquery/pkg/obis/match"
	"github.com/cognicore/obisquery/pkg/obis/report"
	"github.com/cognicore/obisquery/pkg/obis/resolve"
)

// app holds the wired components for one command invocation.
type app struct {
	cfg     *config.Config
	log     *zap.SugaredLogger
	store   catalog.Store
	catalog *catalog.Catalog
	client  *obisapi.Client
	agent   *obis.Agent
}

func buildApp(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger, out io.Writer) (*app, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := obisapi.New(obisapi.Options{
		BaseURL:       cfg.OBIS.BaseURL,
		Timeout:       cfg.OBIS.Timeout,
		RatePerSecond: cfg.OBIS.RatePerSecond,
		Burst:         cfg.OBIS.Burst,
		Logger:        log.Named("obis"),
	})
	cat := catalog.New(client, catalog.Options{Store: store, Logger: log.Named("catalog")})

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	hybrid := match.NewHybrid(match.NewSemantic(embedder), match.Options{
		Weights: cfg.Weights(),
		TopN:    cfg.Resolver.TopN,
		Logger:  log.Named("match"),
	})

	var aliases *lexicon.Lexicon
	if cfg.Aliases.Path != "" {
		if aliases, err = lexicon.LoadFromYAML(cfg.Aliases.Path); err != nil {
			store.Close()
			return nil, errors.Wrap(err, "load aliases")
		}
		log.Debugw("aliases loaded", "groups", aliases.Stats().Groups)
	}

	prompts, err := config.LoadPrompts(cfg.Prompts.Path)
	if err != nil {
		store.Close()
		return nil, err
	}

	datasets := resolve.NewDatasetNameResolver(client.Datasets())
	datasets.MaxAlternatives = cfg.Resolver.MaxAlternatives
	common := resolve.NewCommonNameResolver(&worms.Client{
		BaseURL:    cfg.WoRMS.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.WoRMS.Timeout},
		Logger:     log.Named("worms"),
	})
	common.MaxAlternatives = cfg.Resolver.MaxAlternatives

	reporter := report.Tee{consoleReporter{w: out}, report.NewZap(log.Named("report"))}
	orch := resolve.NewOrchestrator(resolve.Options{
		Resolvers: []resolve.Resolver{
			&resolve.InstituteResolver{
				Catalog:    cat,
				Ranker:     hybrid,
				Thresholds: cfg.Thresholds(),
				TopN:       cfg.Resolver.TopN,
				Aliases:    aliases,
				Logger:     log.Named("resolve"),
			},
			&resolve.AreaResolver{Catalog: cat, Aliases: aliases, Suggestions: cfg.Resolver.AreaSuggestions},
			datasets,
			resolve.NewScientificNameResolver(client.Taxa()),
			common,
		},
		Reporter: reporter,
		Logger:   log.Named("resolve"),
	})

	agent := obis.New(obis.Options{
		Extractor: &llm.Client{
			BaseURL:    cfg.LLM.BaseURL,
			APIKey:     cfg.LLM.APIKey,
			Model:      cfg.LLM.Model,
			Prompts:    prompts,
			HTTPClient: &http.Client{Timeout: cfg.LLM.Timeout},
		},
		Orchestrator: orch,
		Executor:     client,
		Reporter:     reporter,
		BaseURL:      cfg.OBIS.BaseURL,
		Logger:       log.Named("agent"),
	})

	return &app{cfg: cfg, log: log, store: store, catalog: cat, client: client, agent: agent}, nil
}

func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func openStore(ctx context.Context, cfg *config.Config) (catalog.Store, error) {
	switch cfg.Catalog.Backend {
	case "memory":
		return memstore.New(), nil
	default:
		st, err := sqlite.Open(ctx, cfg.Catalog.Path)
		if err != nil {
			return nil, errors.Wrap(err, "open catalog store")
		}
		return st, nil
	}
}

func buildEmbedder(cfg *config.Config) (embed.Embedder, error) {
	var inner embed.Embedder
	switch cfg.Embeddings.Provider {
	case "http":
		inner = &embed.HTTP{
			BaseURL:    cfg.Embeddings.BaseURL,
			APIKey:     cfg.Embeddings.APIKey,
			Model:      cfg.Embeddings.Model,
			HTTPClient: &http.Client{Timeout: cfg.Embeddings.Timeout},
		}
	default:
		inner = embed.NewHash(cfg.Embeddings.Dimensions)
	}
	cached, err := embed.NewCached(inner, cfg.Embeddings.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "embedding cache")
	}
	return cached, nil
}
