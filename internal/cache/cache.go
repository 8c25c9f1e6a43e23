// Package cache implements §5's module-introspection cache: an external
// module analyzer (npm/jsr/http probe) is expensive and must not be rerun
// for every import site that names the same specifier. Two mechanisms are
// combined, named directly in §5 and its §9 open question: a TTL cache
// (short for local specifiers, longer for remote ones) and in-flight
// deduplication, so concurrent callers resolving the same specifier await
// one shared result instead of issuing duplicate probes.
//
// The TTL half is grounded on github.com/hashicorp/golang-lru/v2's
// expirable.LRU, already a project dependency via internal/project's
// FileIndex cache. The teacher's own internal/cache/cache.go is a pure
// memoization cache with no expiry and no dedup — a weak match for this
// requirement — so the TTL tiering and dedup logic here are new, grounded
// instead on gnana997-uispec/pkg/indexer/watcher.go's per-key debounce
// bookkeeping (a mutex-guarded map keyed by specifier) and on the
// single-writer-goroutine discipline in evanw-esbuild/cmd/esbuild/service.go
// (one goroutine owns the expensive call; everyone else waits on a
// channel). golang.org/x/sync/singleflight would be the obvious off-the-
// shelf fit, but it is not a dependency anywhere in the retrieved example
// pack, so it is not added here; the dedup below is a minimal hand-written
// equivalent scoped to exactly this one cache.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Specifier kind determines which TTL tier applies (§5: "short TTL for
// local, longer TTL for remote").
const (
	localTTL  = 30 * time.Second
	remoteTTL = 10 * time.Minute
)

var remotePrefixes = []string{"npm:", "jsr:", "http:", "https:"}

func isRemoteSpecifier(specifier string) bool {
	for _, prefix := range remotePrefixes {
		if strings.HasPrefix(specifier, prefix) {
			return true
		}
	}
	return false
}

// Probe is the result of introspecting one external module specifier:
// whatever the module analyzer (§9) reports about its exports.
type Probe struct {
	Specifier    string
	ExportNames  []string
	ResolvedKind string
	Err          string
}

// ProbeFunc performs the actual (slow, suspending) introspection. §5:
// "Only the LSP boundary and module analyzers suspend" — this is the one
// function in the cache package allowed to block on an external tool.
type ProbeFunc func(ctx context.Context, specifier string) (Probe, error)

// ModuleProbeCache caches ProbeFunc results per specifier with a TTL tiered
// by locality, and deduplicates concurrent callers asking for the same
// specifier at the same time.
type ModuleProbeCache struct {
	local  *lru.LRU[string, Probe]
	remote *lru.LRU[string, Probe]
	probe  ProbeFunc

	mu       sync.Mutex
	inFlight map[string]*call
}

// call is one in-progress probe shared by every concurrent caller asking
// for the same specifier. done is closed when result/err are safe to read,
// mirroring the teacher's pattern of one owner goroutine and N waiters on
// a channel rather than a WaitGroup, since a channel lets waiters select
// on ctx.Done() too.
type call struct {
	done   chan struct{}
	result Probe
	err    error
}

func NewModuleProbeCache(probe ProbeFunc) *ModuleProbeCache {
	return &ModuleProbeCache{
		local:    lru.NewLRU[string, Probe](256, nil, localTTL),
		remote:   lru.NewLRU[string, Probe](256, nil, remoteTTL),
		probe:    probe,
		inFlight: make(map[string]*call),
	}
}

// Get returns the cached probe for specifier, running and caching probe()
// on a miss. Concurrent Get calls for the same specifier share one
// in-flight probe.
func (c *ModuleProbeCache) Get(ctx context.Context, specifier string) (Probe, error) {
	tier := c.local
	if isRemoteSpecifier(specifier) {
		tier = c.remote
	}

	if cached, ok := tier.Get(specifier); ok {
		return cached, nil
	}

	c.mu.Lock()
	if cached, ok := tier.Get(specifier); ok {
		c.mu.Unlock()
		return cached, nil
	}
	if existing, ok := c.inFlight[specifier]; ok {
		c.mu.Unlock()
		return waitForCall(ctx, existing)
	}

	owned := &call{done: make(chan struct{})}
	c.inFlight[specifier] = owned
	c.mu.Unlock()

	owned.result, owned.err = c.probe(ctx, specifier)
	if owned.err == nil {
		tier.Add(specifier, owned.result)
	}
	close(owned.done)

	c.mu.Lock()
	delete(c.inFlight, specifier)
	c.mu.Unlock()

	return owned.result, owned.err
}

func waitForCall(ctx context.Context, c *call) (Probe, error) {
	select {
	case <-c.done:
		return c.result, c.err
	case <-ctx.Done():
		return Probe{}, ctx.Err()
	}
}

// Invalidate drops any cached probe for specifier, called when the
// workspace's import graph changes in a way that could affect a prior
// probe result (e.g. a vendored shim for the specifier appears locally).
func (c *ModuleProbeCache) Invalidate(specifier string) {
	c.local.Remove(specifier)
	c.remote.Remove(specifier)
}
