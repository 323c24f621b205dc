package block

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/c360studio/semdossier/ontology"
)

// palette is everything the Catalog derives from one snapshot.
type palette struct {
	snap     *ontology.Snapshot
	resolver *Resolver

	roots    []Definition
	rootsErr error

	all    []Definition
	byType map[string]Definition
	allErr error

	typeList string
}

// Catalog caches palette views per ontology snapshot. Reads are lock-free
// after the first build; a snapshot swap in the source triggers a single
// rebuild on the next read.
type Catalog struct {
	source ontology.Source
	order  OrderPolicy
	logger *slog.Logger

	mu      sync.Mutex
	current atomic.Pointer[palette]
	builds  atomic.Int64
}

// NewCatalog creates a catalog over source.
func NewCatalog(source ontology.Source, order OrderPolicy, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	if order == "" {
		order = OrderLexical
	}
	return &Catalog{source: source, order: order, logger: logger}
}

// Builds returns how many times the cache has been rebuilt.
func (c *Catalog) Builds() int64 {
	return c.builds.Load()
}

func (c *Catalog) palette() (*palette, error) {
	snap := c.source.Snapshot()
	if snap == nil {
		return nil, fmt.Errorf("%w: no ontology snapshot loaded", ontology.ErrOntologyLoad)
	}
	if p := c.current.Load(); p != nil && p.snap == snap {
		return p, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p := c.current.Load(); p != nil && p.snap == snap {
		return p, nil
	}

	p := build(snap, c.order)
	c.current.Store(p)
	n := c.builds.Add(1)
	c.logger.Debug("Block palette built",
		"reports", len(p.roots),
		"definitions", len(p.all),
		"generation", n)
	if p.rootsErr != nil {
		c.logger.Warn("Block palette incomplete", "error", p.rootsErr)
	} else if p.allErr != nil {
		c.logger.Warn("Block palette incomplete", "error", p.allErr)
	}
	return p, nil
}

func build(snap *ontology.Snapshot, order OrderPolicy) *palette {
	r := NewResolver(snap, order)
	p := &palette{snap: snap, resolver: r, byType: make(map[string]Definition)}

	p.roots, p.rootsErr = r.RootBlockTypes()
	if p.rootsErr != nil {
		p.allErr = p.rootsErr
		return p
	}
	p.typeList = typeList(p.roots)

	p.all, p.allErr = r.AllDefinitions()
	for _, d := range p.all {
		if _, ok := p.byType[d.Type]; !ok {
			p.byType[d.Type] = d
		}
	}
	return p
}

// typeList renders report types the way the editor's connection checks
// expect them: ["t1", "t2"].
func typeList(defs []Definition) string {
	quoted := make([]string, len(defs))
	for i, d := range defs {
		quoted[i] = `"` + d.Type + `"`
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// Resolver returns a resolver over the current snapshot.
func (c *Catalog) Resolver() (*Resolver, error) {
	p, err := c.palette()
	if err != nil {
		return nil, err
	}
	return p.resolver, nil
}

// RootBlockTypes returns the cached report types.
func (c *Catalog) RootBlockTypes() ([]Definition, error) {
	p, err := c.palette()
	if err != nil {
		return nil, err
	}
	if p.rootsErr != nil {
		return nil, p.rootsErr
	}
	return append([]Definition(nil), p.roots...), nil
}

// TypeList returns the cached serialized report type list.
func (c *Catalog) TypeList() (string, error) {
	p, err := c.palette()
	if err != nil {
		return "", err
	}
	if p.rootsErr != nil {
		return "", p.rootsErr
	}
	return p.typeList, nil
}

// AllDefinitions returns every report followed by its descendants.
func (c *Catalog) AllDefinitions() ([]Definition, error) {
	p, err := c.palette()
	if err != nil {
		return nil, err
	}
	if p.allErr != nil {
		return nil, p.allErr
	}
	return append([]Definition(nil), p.all...), nil
}

// Lookup finds a reachable definition by type.
func (c *Catalog) Lookup(typeID string) (Definition, bool, error) {
	p, err := c.palette()
	if err != nil {
		return Definition{}, false, err
	}
	if p.allErr != nil {
		return Definition{}, false, p.allErr
	}
	d, ok := p.byType[typeID]
	return d, ok, nil
}

// ResolveChildren returns the children of typeID; unknown types yield an
// empty result.
func (c *Catalog) ResolveChildren(typeID string, recursive bool) ([]Definition, error) {
	p, err := c.palette()
	if err != nil {
		return nil, err
	}
	if p.allErr != nil {
		return nil, p.allErr
	}
	d, ok := p.byType[typeID]
	if !ok {
		return nil, nil
	}
	return p.resolver.Children(d, recursive)
}

// ResolveAttributes returns the ordered attributes of typeID; unknown types
// yield an empty result.
func (c *Catalog) ResolveAttributes(typeID string) ([]Attribute, error) {
	p, err := c.palette()
	if err != nil {
		return nil, err
	}
	if p.allErr != nil {
		return nil, p.allErr
	}
	d, ok := p.byType[typeID]
	if !ok {
		return nil, nil
	}
	return p.resolver.Attributes(d), nil
}
