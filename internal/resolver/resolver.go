// Package resolver implements §6's import path resolution: relative
// resolution against the containing file and, failing that, against
// workspace roots; a fixed extension-probe order; and a set of prefixes
// that short-circuit local resolution entirely. Grounded on
// internal/resolver/resolver.go's Resolver/ResolveResult shape and its
// directory-info caching discipline, trimmed of everything specific to a
// bundler: package.json "exports" conditions, tsconfig.json, Yarn PnP,
// data URLs, and the "module" vs "main" field tug-of-war have no HQL
// analog (no package.json resolution, no bundling) and are not carried
// over.
package resolver

import (
	"strings"
	"sync"

	"github.com/hlvm-dev/hqlc/internal/fs"
)

// extensionOrder is tried, in order, against an import path that has no
// extension of its own (§6: "Accepted extensions on resolution: the
// source extension and .ts, .js, .mjs, .cjs").
var extensionOrder = []string{".hql", ".ts", ".js", ".mjs", ".cjs"}

// externalPrefixes short-circuit local resolution (§6): these are handed
// back to the caller verbatim as external specifiers rather than resolved
// against the filesystem.
var externalPrefixes = []string{"npm:", "jsr:", "http:", "https:", "node:"}

// ResolveResult mirrors the teacher's PathPair/ResolveResult split at a
// scale HQL needs: either an absolute path on this filesystem, or an
// external specifier to pass through to the target runtime untouched.
type ResolveResult struct {
	AbsPath    string
	IsExternal bool
}

// Resolver caches per-directory existence checks the way the teacher's
// Resolver caches per-directory package.json/tsconfig.json lookups,
// guarded by the same kind of mutex: path resolution is called
// concurrently from the project indexer's workspace scan (§5).
type Resolver struct {
	fsys           fs.FS
	workspaceRoots []string

	mutex     sync.Mutex
	existsFor map[string]bool
}

func NewResolver(fsys fs.FS, workspaceRoots []string) *Resolver {
	return &Resolver{
		fsys:           fsys,
		workspaceRoots: workspaceRoots,
		existsFor:      make(map[string]bool),
	}
}

// Resolve implements §6's resolution order for one import specifier seen
// in containingFile: an external-prefixed specifier passes through
// unresolved; a relative specifier resolves against containingFile's
// directory; anything else (a bare specifier naming a workspace-root-
// relative module) is tried against each workspace root in order.
func (r *Resolver) Resolve(importPath string, containingFile string) (ResolveResult, bool) {
	if prefix, ok := externalPrefix(importPath); ok {
		_ = prefix
		return ResolveResult{AbsPath: importPath, IsExternal: true}, true
	}

	if strings.HasPrefix(importPath, "./") || strings.HasPrefix(importPath, "../") {
		dir := r.fsys.Dir(containingFile)
		if abs, ok := r.probeExtensions(r.fsys.Join(dir, importPath)); ok {
			return ResolveResult{AbsPath: abs}, true
		}
		return ResolveResult{}, false
	}

	for _, root := range r.workspaceRoots {
		if abs, ok := r.probeExtensions(r.fsys.Join(root, importPath)); ok {
			return ResolveResult{AbsPath: abs}, true
		}
	}
	return ResolveResult{}, false
}

func externalPrefix(importPath string) (string, bool) {
	for _, prefix := range externalPrefixes {
		if strings.HasPrefix(importPath, prefix) {
			return prefix, true
		}
	}
	return "", false
}

// probeExtensions tries candidate first, exactly as given, then candidate
// with each of extensionOrder appended in turn. A path that already ends
// in one of the accepted extensions is tried as-is first so an explicit
// `./util.ts` import is never silently redirected to `./util.ts.hql`.
func (r *Resolver) probeExtensions(candidate string) (string, bool) {
	if r.exists(candidate) {
		return candidate, true
	}
	for _, ext := range extensionOrder {
		withExt := candidate + ext
		if r.exists(withExt) {
			return withExt, true
		}
	}
	return "", false
}

func (r *Resolver) exists(path string) bool {
	r.mutex.Lock()
	if cached, ok := r.existsFor[path]; ok {
		r.mutex.Unlock()
		return cached
	}
	r.mutex.Unlock()

	_, err := r.fsys.Stat(path)
	found := err == nil

	r.mutex.Lock()
	r.existsFor[path] = found
	r.mutex.Unlock()
	return found
}

// Invalidate drops a cached existence result, called by the project
// indexer's fsnotify watcher when a file is created or removed so a
// previously-failed or previously-successful resolution is re-probed
// instead of serving stale cache data (§5).
func (r *Resolver) Invalidate(path string) {
	r.mutex.Lock()
	delete(r.existsFor, path)
	r.mutex.Unlock()
}
