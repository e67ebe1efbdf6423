// Package sqlgen renders named SQL templates from a JSON registry. A
// template is compiled lazily on first request for its (name, section)
// pair and the compiled AST is cached for the lifetime of the engine;
// parameter bags are per-call.
//
// An Engine is not safe for concurrent use: the compile cache is mutated
// on first use of each template. Use one engine per goroutine or guard
// calls with a mutex; compiled templates themselves are immutable.
package sqlgen

import (
	"io"
	"log/slog"

	"github.com/leapstack-labs/dynsql/internal/ast"
	"github.com/leapstack-labs/dynsql/internal/parser"
	"github.com/leapstack-labs/dynsql/pkg/core"
)

// Config holds engine configuration.
type Config struct {
	// Registry is the template registry. Nil means an empty registry.
	Registry *Registry

	// Logger receives compile debug logs and evaluation degradation
	// warnings (optional, uses discard if nil).
	Logger *slog.Logger
}

type cacheKey struct {
	name    string
	section string
}

// Engine compiles and renders registry templates.
type Engine struct {
	registry *Registry
	logger   *slog.Logger
	cache    map[cacheKey]*parser.Parser
}

// New creates an engine over the given registry.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	registry := cfg.Registry
	if registry == nil {
		registry = &Registry{entries: map[string]*Entry{}}
	}
	logger.Debug("initializing engine", "templates", registry.Count())
	return &Engine{
		registry: registry,
		logger:   logger,
		cache:    make(map[cacheKey]*parser.Parser),
	}
}

// FromConfig decodes an engine configuration document (an object with a
// "sqls" member) and returns an engine over it.
func FromConfig(data []byte, logger *slog.Logger) (*Engine, error) {
	registry, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	return New(Config{Registry: registry, Logger: logger}), nil
}

// Registry returns the engine's template registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// LoadRegistry replaces the engine's registry with a freshly parsed
// configuration document (an object with an object-valued "sqls" member,
// the same precondition FromConfig enforces). On a parse failure the
// engine keeps its current registry. The compile cache is reset: cached
// ASTs are keyed by (name, section) only, and a stale entry would keep
// serving the old SQL text for an unchanged key after a reload.
func (e *Engine) LoadRegistry(data []byte) error {
	registry, err := ParseConfig(data)
	if err != nil {
		return err
	}
	e.registry = registry
	e.cache = make(map[cacheKey]*parser.Parser)
	e.logger.Debug("registry reloaded", "templates", registry.Count())
	return nil
}

// Render renders the named template's entry point with the given
// parameters. A simple string entry renders directly; a structured entry
// renders its "main" section.
func (e *Engine) Render(name string, params core.Params) (string, error) {
	return e.RenderSection(name, SectionMain, params)
}

// RenderSection renders one section of a registry entry. Section defaults
// merge under the caller's parameters (caller keys win), the compiled AST
// is fetched or built, and sub-template invocations resolve to sibling
// sections of the same entry, recursing through this method.
func (e *Engine) RenderSection(name, section string, params core.Params) (string, error) {
	entry, ok := e.registry.Lookup(name)
	if !ok {
		return "", &TemplateError{Name: name, Err: ErrNotFound}
	}
	sec, ok := entry.Section(section)
	if !ok {
		return "", &TemplateError{Name: name, Section: section, Err: ErrNotFound}
	}

	bag := params.Clone()
	for key, def := range sec.Params {
		if !bag.Has(key) {
			bag.Set(key, core.FromJSON(def))
		}
	}

	key := cacheKey{name: name, section: section}
	p, ok := e.cache[key]
	if !ok {
		var err error
		if p, err = parser.Compile(sec.SQL); err != nil {
			return "", &TemplateError{Name: name, Section: section, Err: err}
		}
		e.cache[key] = p
		e.logger.Debug("compiled template", "name", name, "section", section)
	}

	env := &ast.Env{
		Params: bag,
		Logger: e.logger,
		Resolve: func(sub string, args core.Params) (string, error) {
			return e.RenderSection(name, sub, args)
		},
	}
	return p.Render(env)
}
