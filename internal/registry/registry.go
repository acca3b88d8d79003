// ABOUTME: Thread-safe capability registry over the static tool catalog.
// ABOUTME: Runs availability probes once at construction; unavailable tools vanish from the surface.

package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/2389/toolbelt/internal/llm"
	"github.com/2389/toolbelt/internal/search"
	"github.com/2389/toolbelt/internal/store"
	"github.com/2389/toolbelt/internal/tool"
)

// ErrNotFound indicates a tool or collection name that is undeclared or
// declared but unavailable on this host.
var ErrNotFound = errors.New("tool not found")

// Deps carries the shared dependencies tool constructors draw on.
// Plans must be set for the planning tool to function; Searcher and LLM
// default to the production implementations when nil.
type Deps struct {
	Plans    store.PlanStore
	Searcher search.Searcher
	LLM      llm.Factory
	ChatCfg  llm.ProviderConfig
}

// Descriptor is one declared tool in the catalog.
type Descriptor struct {
	Name     string
	Category string

	construct func(Deps) tool.Tool
	probe     func() error
}

// Info describes a tool for catalog consumers.
type Info struct {
	Name        string
	Category    string
	Description string
	Schema      tool.Schema
}

type entry struct {
	desc      Descriptor
	available bool
}

// Registry is the availability-filtered view over the catalog. Probes run
// once in New; the available set does not change afterwards.
type Registry struct {
	mu          sync.RWMutex
	deps        Deps
	entries     map[string]*entry
	order       []string
	collections map[string][]string
	collOrder   []string
	logger      *slog.Logger
}

type options struct {
	probes      map[string]func() error
	diagnostics func(name string, err error)
	collections map[string][]string
}

// Option configures registry construction.
type Option func(*options)

// WithProbe overrides the availability probe for one tool. A nil fn makes
// the tool unconditionally available.
func WithProbe(name string, fn func() error) Option {
	return func(o *options) {
		if o.probes == nil {
			o.probes = make(map[string]func() error)
		}
		o.probes[name] = fn
	}
}

// WithDiagnostics registers a hook receiving each unavailable tool and its
// probe error at build time. The default is silence.
func WithDiagnostics(fn func(name string, err error)) Option {
	return func(o *options) { o.diagnostics = fn }
}

// WithCollections adds user-defined collections on top of the fixed four.
func WithCollections(user map[string][]string) Option {
	return func(o *options) { o.collections = user }
}

// New builds a registry, probing every declared tool once.
func New(deps Deps, opts ...Option) (*Registry, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if deps.Searcher == nil {
		deps.Searcher = search.NewDuckDuckGo("", nil, nil)
	}
	if deps.LLM == nil {
		deps.LLM = llm.NewClient
	}

	r := &Registry{
		deps:        deps,
		entries:     make(map[string]*entry),
		collections: make(map[string][]string),
		logger:      slog.Default().With("component", "registry"),
	}

	for _, d := range declarations() {
		if fn, overridden := o.probes[d.Name]; overridden {
			d.probe = fn
		}
		available := true
		if d.probe != nil {
			if err := d.probe(); err != nil {
				available = false
				if o.diagnostics != nil {
					o.diagnostics(d.Name, err)
				}
				r.logger.Debug("tool unavailable", "tool", d.Name, "reason", err)
			}
		}
		r.entries[d.Name] = &entry{desc: d, available: available}
		r.order = append(r.order, d.Name)
	}

	for _, name := range fixedCollectionOrder {
		r.collections[name] = fixedCollections[name]
		r.collOrder = append(r.collOrder, name)
	}

	userNames := make([]string, 0, len(o.collections))
	for name := range o.collections {
		userNames = append(userNames, name)
	}
	sort.Strings(userNames)
	for _, name := range userNames {
		if _, fixed := fixedCollections[name]; fixed {
			return nil, fmt.Errorf("user collection %q shadows a fixed collection", name)
		}
		r.collections[name] = append([]string(nil), o.collections[name]...)
		r.collOrder = append(r.collOrder, name)
	}

	r.logger.Info("registry built",
		"declared", len(r.order),
		"available", len(r.ListTools()),
		"collections", len(r.collOrder),
	)
	return r, nil
}

// ListTools returns the available tool names in declaration order.
func (r *Registry) ListTools() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, name := range r.order {
		if r.entries[name].available {
			names = append(names, name)
		}
	}
	return names
}

// ListCategory returns the category's available tool names in declaration
// order. An unknown category yields an empty list.
func (r *Registry) ListCategory(category string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for _, name := range r.order {
		e := r.entries[name]
		if e.available && e.desc.Category == category {
			names = append(names, name)
		}
	}
	return names
}

// Categories returns the distinct categories of available tools, in
// declaration order.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var categories []string
	for _, name := range r.order {
		e := r.entries[name]
		if e.available && !seen[e.desc.Category] {
			seen[e.desc.Category] = true
			categories = append(categories, e.desc.Category)
		}
	}
	return categories
}

// Get returns the descriptor for an available tool.
func (r *Registry) Get(name string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok || !e.available {
		return Descriptor{}, fmt.Errorf("getting tool %q: %w", name, ErrNotFound)
	}
	return e.desc, nil
}

// Create constructs a fresh adapter instance for an available tool.
func (r *Registry) Create(name string) (tool.Tool, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	deps := r.deps
	r.mu.RUnlock()

	if !ok || !e.available {
		return nil, fmt.Errorf("creating tool %q: %w", name, ErrNotFound)
	}
	return e.desc.construct(deps), nil
}

// Info returns the catalog entry for an available tool, including its
// description and parameter schema.
func (r *Registry) Info(name string) (*Info, error) {
	desc, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	deps := r.deps
	r.mu.RUnlock()

	prototype := desc.construct(deps)
	return &Info{
		Name:        desc.Name,
		Category:    desc.Category,
		Description: prototype.Description(),
		Schema:      prototype.Schema(),
	}, nil
}

// Collections returns all collection names: the fixed four first, then user
// collections in sorted order.
func (r *Registry) Collections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.collOrder...)
}

// Toolset resolves a collection to its available members, preserving the
// declared member order. Unknown collections are ErrNotFound; a collection
// with no available members resolves to an empty slice.
func (r *Registry) Toolset(collection string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.collections[collection]
	if !ok {
		return nil, fmt.Errorf("resolving collection %q: %w", collection, ErrNotFound)
	}

	resolved := make([]string, 0, len(members))
	for _, name := range members {
		if e, declared := r.entries[name]; declared && e.available {
			resolved = append(resolved, name)
		}
	}
	return resolved, nil
}

// BasicToolset resolves the basic collection.
func (r *Registry) BasicToolset() []string { return r.fixedToolset(CollectionBasic) }

// WebToolset resolves the web collection.
func (r *Registry) WebToolset() []string { return r.fixedToolset(CollectionWeb) }

// DevelopmentToolset resolves the development collection.
func (r *Registry) DevelopmentToolset() []string { return r.fixedToolset(CollectionDevelopment) }

// AIToolset resolves the ai collection.
func (r *Registry) AIToolset() []string { return r.fixedToolset(CollectionAI) }

func (r *Registry) fixedToolset(collection string) []string {
	names, err := r.Toolset(collection)
	if err != nil {
		// Fixed collections are always registered.
		panic(fmt.Sprintf("fixed collection %q missing: %v", collection, err))
	}
	return names
}

// Suite constructs the named tools, silently skipping unknown or
// unavailable entries. A nil names slice means all available tools.
func (r *Registry) Suite(names []string) []tool.Tool {
	if names == nil {
		names = r.ListTools()
	}

	tools := make([]tool.Tool, 0, len(names))
	for _, name := range names {
		t, err := r.Create(name)
		if err != nil {
			continue
		}
		tools = append(tools, t)
	}
	return tools
}
