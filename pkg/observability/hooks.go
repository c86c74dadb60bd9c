// Package observability provides hooks for tracing and metrics.
//
// Libraries emit events through the registered hooks; the binary decides
// what, if anything, receives them. Nothing in this package depends on an
// observability backend. The OpenTelemetry implementation lives in
// package otelhooks.
//
// Register hooks once at startup:
//
//	observability.SetTreeHooks(otelhooks.New(provider))
//
// Libraries call the current hooks:
//
//	observability.Tree().OnRenderStart(ctx)
//	// ... walk and place windows ...
//	observability.Tree().OnRenderComplete(ctx, placed, time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Tree Hooks
// =============================================================================

// TreeHooks receives events from the layout tree and the event layer.
type TreeHooks interface {
	// Hierarchy events
	OnNodeAdded(ctx context.Context, nodeType string)
	OnNodeRemoved(ctx context.Context, nodeType string)

	// Render events
	OnRenderStart(ctx context.Context)
	OnRenderComplete(ctx context.Context, placed int, duration time.Duration)
	OnPlace(ctx context.Context, class string, x, y, width, height int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Server Hooks
// =============================================================================

// ServerHooks receives events from the HTTP event endpoint.
type ServerHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, status int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopTreeHooks is a no-op implementation of TreeHooks.
type NoopTreeHooks struct{}

func (NoopTreeHooks) OnNodeAdded(context.Context, string)                  {}
func (NoopTreeHooks) OnNodeRemoved(context.Context, string)                {}
func (NoopTreeHooks) OnRenderStart(context.Context)                        {}
func (NoopTreeHooks) OnRenderComplete(context.Context, int, time.Duration) {}
func (NoopTreeHooks) OnPlace(context.Context, string, int, int, int, int)  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	treeHooks   TreeHooks   = NoopTreeHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	serverHooks ServerHooks = NoopServerHooks{}
	hooksMu     sync.RWMutex
)

// SetTreeHooks registers tree hooks. Nil is ignored.
func SetTreeHooks(h TreeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		treeHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks registers server hooks. Nil is ignored.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Tree returns the registered tree hooks.
func Tree() TreeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return treeHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores every hook to its no-op default. Tests use it to isolate
// registrations.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	treeHooks = NoopTreeHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
