package bundler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fgoll/source-code-plan/internal/cache"
	"github.com/fgoll/source-code-plan/internal/fs"
	"github.com/fgoll/source-code-plan/internal/helpers"
	"github.com/fgoll/source-code-plan/internal/js_parser"
	"github.com/fgoll/source-code-plan/internal/js_scope"
	"github.com/fgoll/source-code-plan/internal/logger"
	"github.com/fgoll/source-code-plan/internal/resolver"
	"golang.org/x/sync/errgroup"
)

type fetchState uint8

const (
	fetchPending fetchState = iota
	fetchCompleted
	fetchFailed
)

// Resolved paths and external specifiers live in separate key spaces
type fetchKey struct {
	path     string
	external bool
}

type fetchEntry struct {
	state  fetchState
	record ModuleRecord
	err    error

	// Closed once the entry is no longer pending
	done chan struct{}
}

type Graph struct {
	log    logger.Log
	fs     fs.FS
	res    resolver.Resolver
	caches *cache.CacheSet
	timer  *helpers.Timer

	EntryPath string
	BaseDir   string

	// Guards the fields below it, which are written by concurrent fetches
	mutex     sync.Mutex
	memo      map[fetchKey]*fetchEntry
	externals []*ExternalModule

	parseCount int32

	entry *Module

	// The included statements in the order they will be emitted
	statements []*Statement

	// Modules in the order expansion first touched them, entry first
	discovered   []*Module
	isDiscovered map[*Module]bool

	// External modules that included code refers to, in order of first use
	referencedExternals []*ExternalModule
	isReferenced        map[*ExternalModule]bool

	// Modules imported with "import * as" that need a namespace object
	namespaceModules []*Module
	isNamespace      map[*Module]bool

	isNamed bool
}

// The timer may be nil. The cache set may be nil, in which case file
// contents are only shared within this graph.
func NewGraph(log logger.Log, fsys fs.FS, res resolver.Resolver, caches *cache.CacheSet, timer *helpers.Timer, entryPath string) *Graph {
	if caches == nil {
		caches = cache.MakeCacheSet()
	}

	absPath, ok := fsys.Abs(entryPath)
	if !ok {
		absPath = entryPath
	}

	return &Graph{
		log:          log,
		fs:           fsys,
		res:          res,
		caches:       caches,
		timer:        timer,
		EntryPath:    resolver.AddDefaultExtension(fsys, absPath),
		BaseDir:      fsys.Cwd(),
		memo:         make(map[fetchKey]*fetchEntry),
		isDiscovered: make(map[*Module]bool),
		isReferenced: make(map[*ExternalModule]bool),
		isNamespace:  make(map[*Module]bool),
	}
}

// Loads the module graph and decides which statements end up in the output
func (g *Graph) Build(ctx context.Context) error {
	g.timer.Begin("Build")
	defer g.timer.End("Build")

	g.timer.Begin("Load modules")
	record, err := g.fetchModule(ctx, g.EntryPath, "")
	if err != nil {
		g.timer.End("Load modules")
		return err
	}
	entry, ok := record.(*Module)
	if !ok {
		panic("Internal error")
	}
	g.entry = entry
	err = g.prefetch(ctx, entry)
	g.timer.End("Load modules")
	if err != nil {
		return err
	}

	g.timer.Begin("Expand statements")
	defer g.timer.End("Expand statements")
	g.discover(entry)
	if err := entry.expandAllStatements(ctx, true); err != nil {
		return err
	}
	g.log.AddDebug(fmt.Sprintf("Included %d statements from %d modules", len(g.statements), len(g.discovered)))
	return nil
}

// Returns the module for a specifier. An empty importer means the specifier
// is an already-resolved path. Concurrent calls for the same module share
// one fetch.
func (g *Graph) fetchModule(ctx context.Context, specifier string, importer string) (ModuleRecord, error) {
	key := fetchKey{path: specifier}
	if importer != "" {
		path, err := g.res.Resolve(ctx, specifier, importer)
		if err != nil {
			return nil, err
		}
		if path == "" {
			key = fetchKey{path: specifier, external: true}
		} else {
			key.path = path
		}
	}

	g.mutex.Lock()
	entry, ok := g.memo[key]
	if !ok {
		entry = &fetchEntry{done: make(chan struct{})}
		g.memo[key] = entry
	}
	g.mutex.Unlock()

	if !ok {
		entry.record, entry.err = g.load(ctx, key, importer)
		if entry.err != nil {
			entry.state = fetchFailed
		} else {
			entry.state = fetchCompleted
		}
		close(entry.done)
	}

	select {
	case <-entry.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return entry.record, entry.err
}

func (g *Graph) load(ctx context.Context, key fetchKey, importer string) (ModuleRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if key.external {
		external := newExternalModule(key.path)
		g.mutex.Lock()
		g.externals = append(g.externals, external)
		g.mutex.Unlock()
		g.log.AddDebug(fmt.Sprintf("Treating %q as external", key.path))
		return external, nil
	}

	contents, err := g.caches.FSCache.ReadFile(g.fs, key.path)
	if err != nil {
		if importer != "" {
			importer = g.prettyPath(importer)
		}
		return nil, &ReadError{Path: g.prettyPath(key.path), Importer: importer, Err: err}
	}

	source := logger.Source{
		KeyPath:        key.path,
		PrettyPath:     g.prettyPath(key.path),
		IdentifierName: identifierName(g.fs.Base(key.path)),
		Contents:       contents,
	}
	ast, err := js_parser.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	atomic.AddInt32(&g.parseCount, 1)

	module, err := newModule(g, source, ast, js_scope.Analyze(ast, contents))
	if err != nil {
		return nil, err
	}
	g.log.AddDebug(fmt.Sprintf("Loaded %s (%d statements)", source.PrettyPath, len(module.Statements)))
	return module, nil
}

// Fetches every module reachable from the entry concurrently so that
// expansion, which is sequential, never has to wait on the file system
func (g *Graph) prefetch(ctx context.Context, entry *Module) error {
	group, groupCtx := errgroup.WithContext(ctx)
	var visitedMutex sync.Mutex
	visited := map[*Module]bool{entry: true}

	var visit func(m *Module)
	visit = func(m *Module) {
		for _, source := range m.sources {
			source := source
			group.Go(func() error {
				record, err := g.fetchModule(groupCtx, source, m.Path)
				if err != nil {
					return err
				}
				if child, ok := record.(*Module); ok {
					visitedMutex.Lock()
					isNew := !visited[child]
					visited[child] = true
					visitedMutex.Unlock()
					if isNew {
						visit(child)
					}
				}
				return nil
			})
		}
	}

	visit(entry)
	return group.Wait()
}

func (g *Graph) prettyPath(path string) string {
	if rel, ok := g.fs.Rel(g.BaseDir, path); ok && !strings.HasPrefix(rel, "..") {
		path = rel
	}
	return strings.ReplaceAll(path, "\\", "/")
}

func (g *Graph) discover(m *Module) {
	if !g.isDiscovered[m] {
		g.isDiscovered[m] = true
		g.discovered = append(g.discovered, m)
	}
}

func (g *Graph) registerExternal(e *ExternalModule) {
	if !g.isReferenced[e] {
		g.isReferenced[e] = true
		g.referencedExternals = append(g.referencedExternals, e)
	}
}

func (g *Graph) registerNamespace(m *Module) {
	if !g.isNamespace[m] {
		g.isNamespace[m] = true
		g.namespaceModules = append(g.namespaceModules, m)
	}
}

func (g *Graph) Entry() *Module {
	return g.entry
}

func (g *Graph) Statements() []*Statement {
	return g.statements
}

// The number of files parsed so far. Each module is parsed at most once.
func (g *Graph) ParseCount() int {
	return int(atomic.LoadInt32(&g.parseCount))
}

// Returns the module loaded for an absolute path, if any
func (g *Graph) Module(path string) *Module {
	g.mutex.Lock()
	entry, ok := g.memo[fetchKey{path: path}]
	g.mutex.Unlock()
	if !ok {
		return nil
	}
	<-entry.done
	if entry.state != fetchCompleted {
		return nil
	}
	module, _ := entry.record.(*Module)
	return module
}

// Every external module seen while loading, in the order they were first
// fetched. This may include externals that no included code refers to.
func (g *Graph) Externals() []*ExternalModule {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return append([]*ExternalModule{}, g.externals...)
}
