package block

import (
	"fmt"
	"sort"
	"strings"

	"github.com/c360studio/semdossier/graph"
	"github.com/c360studio/semdossier/ontology"
	"github.com/c360studio/semdossier/vocabulary/dossier"
	"github.com/cayleygraph/quad"
)

// Definition is a block type as the editor sees it.
type Definition struct {
	// Type is the class IRI, or for anonymous groups the parent's type
	// joined to the group label with "-".
	Type    string `json:"type"`
	Name    string `json:"name"`
	Message string `json:"message"`
	Hue     int    `json:"hue"`

	node quad.Value
}

// Resolver answers palette questions against one ontology snapshot.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	snap  *ontology.Snapshot
	order OrderPolicy
}

// NewResolver creates a resolver. An empty policy selects OrderLexical.
func NewResolver(snap *ontology.Snapshot, order OrderPolicy) *Resolver {
	if order == "" {
		order = OrderLexical
	}
	return &Resolver{snap: snap, order: order}
}

// Snapshot returns the snapshot the resolver reads.
func (r *Resolver) Snapshot() *ontology.Snapshot {
	return r.snap
}

func (r *Resolver) define(node quad.Value, parentType string) Definition {
	msg := r.message(node)
	d := Definition{Message: msg, node: node}
	if iri, ok := graph.IRIOf(node); ok {
		d.Type = iri
		d.Name = strings.ToUpper(graph.LocalName(iri))
	} else {
		d.Type = parentType + "-" + msg
		d.Name = strings.ToUpper(msg)
	}
	d.Hue = Hue(d.Type)
	return d
}

// message is the rdfs:label of node, falling back to its local name.
func (r *Resolver) message(node quad.Value) string {
	if label, ok := r.snap.Label(node); ok {
		return label
	}
	if iri, ok := graph.IRIOf(node); ok {
		return graph.LocalName(iri)
	}
	return ""
}

// RootBlockTypes returns the direct subclasses of the report class in
// snapshot order. A report whose superclass chain cycles makes the whole
// call fail.
func (r *Resolver) RootBlockTypes() ([]Definition, error) {
	subjects := r.snap.Subjects(quad.IRI(dossier.RDFSSubClassOf), quad.IRI(dossier.ClassReport))
	out := make([]Definition, 0, len(subjects))
	for _, s := range subjects {
		if _, err := r.snap.Ancestors(s); err != nil {
			return nil, fmt.Errorf("report %s: %w", graph.Key(s), err)
		}
		out = append(out, r.define(s, ""))
	}
	return out, nil
}

// Children returns the attribute-group children of def. With recursive set
// the full descendant set is returned depth-first. A group that contains
// itself, directly or through other groups, fails with an
// *ontology.CycleError.
func (r *Resolver) Children(def Definition, recursive bool) ([]Definition, error) {
	var out []Definition
	path := []string{graph.Key(def.node)}
	if err := r.collect(def, recursive, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resolver) collect(def Definition, recursive bool, path []string, out *[]Definition) error {
	for _, o := range r.snap.Objects(def.node, quad.IRI(dossier.PropAttributeGroup)) {
		child := r.define(o, def.Type)
		*out = append(*out, child)
		if !recursive {
			continue
		}
		k := graph.Key(o)
		for _, p := range path {
			if p == k {
				return &ontology.CycleError{
					Relation: dossier.PropAttributeGroup,
					Path:     append(append([]string(nil), path...), k),
				}
			}
		}
		if err := r.collect(child, true, append(path, k), out); err != nil {
			return err
		}
	}
	return nil
}

// AllDefinitions returns every report followed by its descendants.
func (r *Resolver) AllDefinitions() ([]Definition, error) {
	roots, err := r.RootBlockTypes()
	if err != nil {
		return nil, err
	}
	var out []Definition
	for _, root := range roots {
		out = append(out, root)
		desc, err := r.Children(root, true)
		if err != nil {
			return nil, err
		}
		out = append(out, desc...)
	}
	return out, nil
}

// Lookup finds a definition by type among all reachable definitions.
func (r *Resolver) Lookup(typeID string) (Definition, bool, error) {
	all, err := r.AllDefinitions()
	if err != nil {
		return Definition{}, false, err
	}
	for _, d := range all {
		if d.Type == typeID {
			return d, true, nil
		}
	}
	return Definition{}, false, nil
}

// ResolveChildren returns the children of the block type typeID. An unknown
// type yields an empty result, not an error.
func (r *Resolver) ResolveChildren(typeID string, recursive bool) ([]Definition, error) {
	def, ok, err := r.Lookup(typeID)
	if err != nil || !ok {
		return nil, err
	}
	return r.Children(def, recursive)
}

// ResolveAttributes returns the ordered attributes of the block type typeID.
// An unknown type yields an empty result.
func (r *Resolver) ResolveAttributes(typeID string) ([]Attribute, error) {
	def, ok, err := r.Lookup(typeID)
	if err != nil || !ok {
		return nil, err
	}
	return r.Attributes(def), nil
}

type attrRef struct {
	node  quad.Value
	order string
	group bool
}

// Attributes returns the ordered attributes of def. Attribute and
// attribute-group nodes are sorted together by their order key under the
// resolver's policy; ties keep snapshot order. Positions count from 1.
func (r *Resolver) Attributes(def Definition) []Attribute {
	attrPred := graph.Key(quad.IRI(dossier.PropAttribute))
	groupPred := graph.Key(quad.IRI(dossier.PropAttributeGroup))

	var refs []attrRef
	for _, t := range r.snap.Statements(def.node, nil, nil) {
		switch graph.Key(t.Predicate) {
		case attrPred:
			refs = append(refs, attrRef{node: t.Object})
		case groupPred:
			refs = append(refs, attrRef{node: t.Object, group: true})
		default:
			continue
		}
		ref := &refs[len(refs)-1]
		if o, ok := r.snap.Object(ref.node, quad.IRI(dossier.PropOrder)); ok {
			ref.order, _ = graph.Lexical(o)
		}
	}

	sort.SliceStable(refs, func(i, j int) bool {
		return r.order.Less(refs[i].order, refs[j].order)
	})

	out := make([]Attribute, 0, len(refs))
	for i, ref := range refs {
		if ref.group {
			out = append(out, r.groupAttribute(def, ref, i+1))
		} else {
			out = append(out, r.simpleAttribute(ref, i+1))
		}
	}
	return out
}

func (r *Resolver) groupAttribute(parent Definition, ref attrRef, pos int) *GroupAttribute {
	nested := r.define(ref.node, parent.Type)
	return &GroupAttribute{
		Field: Field{
			Position:    pos,
			Order:       ref.order,
			TypeID:      nested.Type,
			Name:        nested.Message,
			Message:     nested.Message,
			Kind:        InputValue,
			Constraints: Constraints{NestedType: nested.Type},
		},
		BlockType: nested.Type,
	}
}

func (r *Resolver) simpleAttribute(ref attrRef, pos int) *SimpleAttribute {
	nodeIRI, _ := graph.IRIOf(ref.node)
	predicate := nodeIRI
	if o, ok := r.snap.Object(ref.node, quad.IRI(dossier.PropPredicate)); ok {
		if iri, ok := graph.IRIOf(o); ok {
			predicate = iri
		}
	}

	var rng string
	if ranges := r.snap.Ranges(predicate); len(ranges) > 0 {
		rng = ranges[0]
	}
	kind := KindForRange(rng)
	constraints := ConstraintsForRange(rng)
	if kind == FieldDropdown {
		constraints.Options = r.options(predicate)
	}

	return &SimpleAttribute{
		Field: Field{
			Position:    pos,
			Order:       ref.order,
			TypeID:      predicate,
			Name:        predicate,
			Message:     r.message(quad.IRI(predicate)),
			Kind:        kind,
			Constraints: constraints,
		},
		Node:      nodeIRI,
		Predicate: predicate,
		Range:     rng,
	}
}

// options collects the dropdown entries of a property: the labelled objects
// of its option-group statements, in snapshot order.
func (r *Resolver) options(predicate string) []Option {
	var out []Option
	for _, t := range r.snap.Statements(quad.IRI(predicate), nil, nil) {
		p, _ := graph.IRIOf(t.Predicate)
		o, isIRI := graph.IRIOf(t.Object)
		if !strings.Contains(p, "option_group") && !(isIRI && strings.Contains(o, "option_group")) {
			continue
		}
		label := r.message(t.Object)
		if label == "" {
			continue
		}
		out = append(out, Option{Value: label, Label: label})
	}
	return out
}
