// Package observability provides hooks for metrics and tracing.
//
// Libraries in this module emit events through the hooks registered here
// instead of importing a metrics backend directly. The defaults are no-ops;
// binaries install a real implementation (see [Prometheus]) at startup:
//
//	func main() {
//	    metrics := observability.NewPrometheus(nil)
//	    observability.Install(metrics)
//	    // ... run application
//	}
//
// Libraries call hooks around the work they do:
//
//	observability.Enumeration().OnEnumerateStart(ctx, junction, n)
//	// ... enumerate ...
//	observability.Enumeration().OnEnumerateComplete(ctx, junction, n, phases, levels, elapsed, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Enumeration Hooks
// =============================================================================

// EnumerationHooks receives events from safe-phase enumeration.
type EnumerationHooks interface {
	// OnEnumerateStart is called before a junction with n connections is
	// enumerated.
	OnEnumerateStart(ctx context.Context, junction string, n int)

	// OnEnumerateComplete is called when enumeration finished. phases and
	// levels are zero when err is non-nil.
	OnEnumerateComplete(ctx context.Context, junction string, n, phases, levels int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations. keyType is the key
// family, such as "phases" or "network".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the API server. route is the matched route
// pattern, not the raw path, to keep label cardinality bounded.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEnumerationHooks is a no-op implementation of EnumerationHooks.
type NoopEnumerationHooks struct{}

func (NoopEnumerationHooks) OnEnumerateStart(context.Context, string, int) {}
func (NoopEnumerationHooks) OnEnumerateComplete(context.Context, string, int, int, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                       {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	enumerationHooks EnumerationHooks = NoopEnumerationHooks{}
	cacheHooks       CacheHooks       = NoopCacheHooks{}
	httpHooks        HTTPHooks        = NoopHTTPHooks{}
	hooksMu          sync.RWMutex
)

// SetEnumerationHooks registers custom enumeration hooks. nil is ignored.
func SetEnumerationHooks(h EnumerationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		enumerationHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Install registers every hook family that h implements.
func Install(h any) {
	if e, ok := h.(EnumerationHooks); ok {
		SetEnumerationHooks(e)
	}
	if c, ok := h.(CacheHooks); ok {
		SetCacheHooks(c)
	}
	if x, ok := h.(HTTPHooks); ok {
		SetHTTPHooks(x)
	}
}

// Enumeration returns the registered enumeration hooks.
func Enumeration() EnumerationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return enumerationHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	enumerationHooks = NoopEnumerationHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
