package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/safephase/pkg/cache"
	"github.com/matzehuels/safephase/pkg/conflict"
	pkgio "github.com/matzehuels/safephase/pkg/io"
	"github.com/matzehuels/safephase/pkg/netxml"
	"github.com/matzehuels/safephase/pkg/observability"
	"github.com/matzehuels/safephase/pkg/phase"
)

// Runner encapsulates enumeration with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer defaults to DefaultKeyer, a nil
// cache to NullCache and a nil logger to log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute loads the matrix selected by opts and enumerates it.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Output, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := opts.validateInput(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	loadStart := time.Now()
	decl, m, err := r.load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTime := time.Since(loadStart)
	logger.Debug("loaded conflict matrix",
		"junction", decl.ID,
		"connections", m.Size(),
		"duration", loadTime)

	out, err := r.EnumerateMatrix(ctx, decl, m, opts)
	if err != nil {
		return nil, err
	}
	out.Stats.LoadTime = loadTime
	return out, nil
}

// EnumerateMatrix enumerates an already loaded matrix with caching.
func (r *Runner) EnumerateMatrix(ctx context.Context, decl phase.Junction, m *conflict.Matrix, opts Options) (*Output, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("enumerate: nil matrix")
	}
	logger := r.logger(opts)

	key := r.Keyer.PhaseKey(m.Canonical(), cache.PhaseKeyOpts{
		JunctionID:   decl.ID,
		JunctionType: decl.Type,
		MaxPhases:    opts.MaxPhases,
	})
	out := &Output{Junction: decl, CacheKey: key}

	if !opts.Refresh {
		if res, ok := r.lookup(ctx, key, m); ok {
			out.Result = res
			out.CacheHit = true
			out.Stats = statsOf(res)
			logger.Debug("cache hit", "junction", decl.ID, "key", key)
			return out, nil
		}
	}

	hooks := observability.Enumeration()
	hooks.OnEnumerateStart(ctx, decl.ID, m.Size())
	start := time.Now()
	res, err := phase.Enumerate(m,
		phase.WithContext(ctx),
		phase.WithJunction(decl),
		phase.WithMaxPhases(opts.MaxPhases))
	elapsed := time.Since(start)
	if err != nil {
		hooks.OnEnumerateComplete(ctx, decl.ID, m.Size(), 0, 0, elapsed, err)
		return nil, fmt.Errorf("enumerate %s: %w", describe(decl), err)
	}
	hooks.OnEnumerateComplete(ctx, decl.ID, m.Size(), len(res.Phases), len(res.Levels()), elapsed, nil)

	for _, d := range res.Diagnostics {
		logger.Warn(d.Message, "junction", decl.ID, "code", d.Code)
	}
	logger.Info("enumerated safe phases",
		"junction", decl.ID,
		"connections", res.N,
		"phases", len(res.Phases),
		"largest", res.Largest(),
		"duration", elapsed)

	out.Result = res
	out.Stats = statsOf(res)
	out.Stats.EnumerateTime = elapsed
	r.store(ctx, key, res, opts.CacheTTL, logger)
	return out, nil
}

// EnumerateAll enumerates every traffic light junction of net. Outputs are
// returned in the order of net.TrafficLights(). The first failure cancels
// the remaining work.
func (r *Runner) EnumerateAll(ctx context.Context, net *netxml.Network, opts Options) ([]*Output, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	ids := net.TrafficLights()
	outs := make([]*Output, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			j, err := net.Junction(id)
			if err != nil {
				return err
			}
			m, err := j.FoeMatrix()
			if err != nil {
				return fmt.Errorf("junction %s: %w", id, err)
			}
			out, err := r.EnumerateMatrix(gctx, j.Declaration(), m, opts)
			if err != nil {
				return err
			}
			outs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outs, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookup returns a cached result if one exists and is the complete safe-phase
// collection of m. Anything else is dropped from the cache.
func (r *Runner) lookup(ctx context.Context, key string, m *conflict.Matrix) (*phase.Result, bool) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, "phases")
		return nil, false
	}
	res, err := pkgio.ReadResult(bytes.NewReader(data))
	if err != nil || phase.Verify(m, res) != nil {
		hooks.OnCacheMiss(ctx, "phases")
		_ = r.Cache.Delete(ctx, key)
		return nil, false
	}
	hooks.OnCacheHit(ctx, "phases")
	return res, true
}

func (r *Runner) store(ctx context.Context, key string, res *phase.Result, ttl time.Duration, logger *log.Logger) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "phases", len(data))
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// load reads the junction declaration and matrix selected by opts.
func (r *Runner) load(ctx context.Context, opts Options) (phase.Junction, *conflict.Matrix, error) {
	if opts.NetFile != "" {
		net, _, err := r.LoadNetwork(ctx, opts.NetFile, opts)
		if err != nil {
			return phase.Junction{}, nil, err
		}
		j, err := net.Junction(opts.Junction)
		if err != nil {
			return phase.Junction{}, nil, err
		}
		m, err := j.FoeMatrix()
		if err != nil {
			return phase.Junction{}, nil, err
		}
		return j.Declaration(), m, nil
	}

	doc, err := pkgio.ImportMatrix(opts.MatrixFile)
	if err != nil {
		return phase.Junction{}, nil, err
	}
	if opts.Junction != "" {
		doc.Junction.ID = opts.Junction
	}
	return doc.Junction, doc.Matrix, nil
}

func statsOf(res *phase.Result) Stats {
	return Stats{
		Connections: res.N,
		Phases:      len(res.Phases),
		Levels:      len(res.Levels()),
	}
}

func describe(j phase.Junction) string {
	if j.ID == "" {
		return "matrix"
	}
	return "junction " + j.ID
}
