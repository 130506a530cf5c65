package pipeline

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/matzehuels/safephase/pkg/cache"
	"github.com/matzehuels/safephase/pkg/netxml"
	"github.com/matzehuels/safephase/pkg/observability"
)

// LoadNetwork reads the network file at path. Parsed networks are cached
// under the SHA-256 of the file contents, so an edited file is parsed again
// while an unchanged one is not. The second return value reports a cache hit.
func (r *Runner) LoadNetwork(ctx context.Context, path string, opts Options) (*netxml.Network, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	data, err := netxml.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.NetworkKey(cache.Hash(data))
	hooks := observability.Cache()

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var net netxml.Network
			if err := json.Unmarshal(cached, &net); err == nil {
				hooks.OnCacheHit(ctx, "network")
				return &net, true, nil
			}
			_ = r.Cache.Delete(ctx, key)
		}
		hooks.OnCacheMiss(ctx, "network")
	}

	net, err := netxml.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, false, err
	}
	if encoded, err := json.Marshal(net); err == nil {
		if err := r.Cache.Set(ctx, key, encoded, opts.CacheTTL); err != nil {
			r.logger(opts).Warn("cache write failed", "key", key, "error", err)
		} else {
			hooks.OnCacheSet(ctx, "network", len(encoded))
		}
	}
	return net, false, nil
}
