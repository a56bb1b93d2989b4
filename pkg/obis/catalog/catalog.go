// Package catalog holds the reference sets (OBIS areas and institutes) that
// free-text names are matched against. Sets are fetched from the upstream
// API on first use, kept in memory for the life of the process and mirrored
// into a Store so a restart can skip the download.
package catalog

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/cognicore/obisquery/pkg/obis/internalerr"
)

// Kind names a reference set.
type Kind string

const (
	KindArea      Kind = "area"
	KindInstitute Kind = "institute"
)

// Kinds lists every reference set the catalog knows how to load.
func Kinds() []Kind { return []Kind{KindArea, KindInstitute} }

// Entity is one addressable reference record.
type Entity struct {
	ID    string
	Name  string
	Kind  Kind
	Extra string // institute country
	Type  string // area type, passed through
}

// Source enumerates a reference set from upstream, without filters.
type Source interface {
	Fetch(ctx context.Context, kind Kind) ([]Entity, error)
}

// Store persists prepared reference sets between processes.
type Store interface {
	// Load returns the stored set; ok is false when none was saved.
	Load(ctx context.Context, kind Kind) (entities []Entity, ok bool, err error)
	Save(ctx context.Context, kind Kind, entities []Entity) error
	Purge(ctx context.Context) error
	Close() error
}

// Remover is implemented by stores backed by an on-disk artifact that
// Teardown should delete.
type Remover interface {
	Remove() error
}

// Options configures a Catalog.
type Options struct {
	Store  Store
	Logger *zap.SugaredLogger
}

// Catalog is a process-scoped, read-mostly cache of reference sets.
type Catalog struct {
	source Source
	store  Store
	log    *zap.SugaredLogger

	mu    sync.RWMutex
	cache map[Kind][]Entity
	group singleflight.Group
}

// New builds a catalog that loads from source. A nil Store disables
// persistence.
func New(source Source, opts Options) *Catalog {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Catalog{
		source: source,
		store:  opts.Store,
		log:    log,
		cache:  make(map[Kind][]Entity),
	}
}

// Get returns the reference set for kind, loading it on first use.
// Concurrent first calls share a single load. An empty upstream result is
// reported as ErrEmptyCatalog and is not cached, so the next call fetches
// again.
func (c *Catalog) Get(ctx context.Context, kind Kind) ([]Entity, error) {
	if entities, ok := c.cached(kind); ok {
		return entities, nil
	}
	return c.load(ctx, kind, false)
}

// Refresh fetches the set for kind again and replaces the cached and stored
// copies. When the re-fetch fails or comes back empty the previous set is
// kept and the error is returned.
func (c *Catalog) Refresh(ctx context.Context, kind Kind) ([]Entity, error) {
	return c.load(ctx, kind, true)
}

// Warm loads several kinds concurrently.
func (c *Catalog) Warm(ctx context.Context, kinds ...Kind) error {
	if len(kinds) == 0 {
		kinds = Kinds()
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range kinds {
		kind := kind
		g.Go(func() error {
			_, err := c.Get(gctx, kind)
			return err
		})
	}
	return g.Wait()
}

// Teardown evicts every set, purges the store and removes its artifact.
// The catalog must not be used afterwards.
func (c *Catalog) Teardown(ctx context.Context) error {
	c.mu.Lock()
	c.cache = make(map[Kind][]Entity)
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if err := c.store.Purge(ctx); err != nil {
		return errors.Wrap(err, "purge catalog store")
	}
	if r, ok := c.store.(Remover); ok {
		if err := r.Remove(); err != nil {
			return errors.Wrap(err, "remove catalog store")
		}
	}
	c.log.Infow("catalog torn down")
	return nil
}

func (c *Catalog) cached(kind Kind) ([]Entity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entities, ok := c.cache[kind]
	if !ok {
		return nil, false
	}
	return slices.Clone(entities), true
}

func (c *Catalog) load(ctx context.Context, kind Kind, force bool) ([]Entity, error) {
	key := string(kind)
	if force {
		key = "refresh:" + key
	}

	// The shared load outlives any single waiter's cancellation.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if !force {
			if entities, ok := c.cached(kind); ok {
				return entities, nil
			}
			if entities, ok := c.fromStore(shared, kind); ok {
				c.put(kind, entities)
				return entities, nil
			}
		}
		return c.fetch(shared, kind)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]Entity)), nil
	}
}

func (c *Catalog) fromStore(ctx context.Context, kind Kind) ([]Entity, bool) {
	if c.store == nil {
		return nil, false
	}
	entities, ok, err := c.store.Load(ctx, kind)
	if err != nil {
		c.log.Warnw("catalog store read failed", "kind", kind, "error", err)
		return nil, false
	}
	if !ok || len(entities) == 0 {
		return nil, false
	}
	c.log.Debugw("catalog loaded", "kind", kind, "count", len(entities), "from", "store")
	return entities, true
}

func (c *Catalog) fetch(ctx context.Context, kind Kind) ([]Entity, error) {
	if c.source == nil {
		return nil, errors.Wrapf(internalerr.ErrInvalidConfig, "catalog %s: no source", kind)
	}
	raw, err := c.source.Fetch(ctx, kind)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s catalog", kind)
	}

	entities := Prepare(kind, raw)
	if len(entities) == 0 {
		return nil, errors.WithHint(
			errors.Wrapf(internalerr.ErrEmptyCatalog, "%s catalog", kind),
			"OBIS returned no "+string(kind)+" records")
	}

	if c.store != nil {
		if err := c.store.Save(ctx, kind, entities); err != nil {
			c.log.Warnw("catalog store write failed", "kind", kind, "error", err)
		}
	}
	c.put(kind, entities)
	c.log.Infow("catalog loaded", "kind", kind, "count", len(entities), "from", "upstream")
	return entities, nil
}

func (c *Catalog) put(kind Kind, entities []Entity) {
	c.mu.Lock()
	c.cache[kind] = entities
	c.mu.Unlock()
}

// Prepare applies load-time rules to a raw upstream set: institutes without
// an identifier are dropped and get their country appended to the name, so
// same-named institutes in different countries stay distinguishable.
func Prepare(kind Kind, raw []Entity) []Entity {
	out := make([]Entity, 0, len(raw))
	for _, e := range raw {
		e.Kind = kind
		e.ID = strings.TrimSpace(e.ID)
		if kind == KindInstitute {
			if e.ID == "" {
				continue
			}
			if country := strings.TrimSpace(e.Extra); country != "" {
				e.Name = strings.TrimSpace(e.Name) + " - " + country
			}
		}
		out = append(out, e)
	}
	return out
}
