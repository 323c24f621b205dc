package document

import (
	"github.com/c360studio/semdossier/block"
)

// Palette is the part of the block catalog validation needs.
type Palette interface {
	Lookup(typeID string) (block.Definition, bool, error)
	ResolveAttributes(typeID string) ([]block.Attribute, error)
}

// Validator checks documents against the block palette.
type Validator struct {
	palette Palette
	mapping *Mapping
}

// NewValidator creates a validator. A nil mapping selects the built-in one.
func NewValidator(p Palette, m *Mapping) *Validator {
	if m == nil {
		m = DefaultMapping()
	}
	return &Validator{palette: p, mapping: m}
}

// Validate reports every block type, field and input of doc that the
// palette does not declare. The returned error is reserved for palette
// failures; a document with issues is not an error here.
func (v *Validator) Validate(doc *Document) ([]Issue, error) {
	var issues []Issue
	var failure error
	doc.Walk(func(n *Node, _ *Node) {
		if failure != nil {
			return
		}
		found, err := v.validateNode(n)
		if err != nil {
			failure = err
			return
		}
		issues = append(issues, found...)
	})
	if failure != nil {
		return nil, failure
	}
	return issues, nil
}

func (v *Validator) validateNode(n *Node) ([]Issue, error) {
	if n.Type == v.mapping.RootType {
		return v.validateRoot(n)
	}

	_, ok, err := v.palette.Lookup(n.Type)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Issue{{BlockID: n.ID, BlockType: n.Type, Reason: "unknown block type"}}, nil
	}

	attrs, err := v.palette.ResolveAttributes(n.Type)
	if err != nil {
		return nil, err
	}
	simple := make(map[string]bool)
	groups := make(map[string]string)
	for _, a := range attrs {
		switch a := a.(type) {
		case *block.SimpleAttribute:
			simple[a.Name] = true
		case *block.GroupAttribute:
			groups[a.Name] = a.BlockType
			groups[a.BlockType] = a.BlockType
		}
	}

	var issues []Issue
	for _, f := range n.Fields {
		if simple[f.Name] {
			continue
		}
		if _, mapped := v.mapping.Fields[f.Name]; mapped {
			continue
		}
		issues = append(issues, Issue{
			BlockID: n.ID, BlockType: n.Type, Field: f.Name,
			Reason: "no attribute declares this field",
		})
	}
	for _, in := range n.Inputs {
		want, ok := groups[in.Name]
		if !ok {
			issues = append(issues, Issue{
				BlockID: n.ID, BlockType: n.Type, Field: in.Name,
				Reason: "no attribute group declares this input",
			})
			continue
		}
		for _, c := range in.Blocks {
			if c.Type != want {
				issues = append(issues, Issue{
					BlockID: c.ID, BlockType: c.Type, Field: in.Name,
					Reason: "block type not allowed in input, want " + want,
				})
			}
		}
	}
	return issues, nil
}

func (v *Validator) validateRoot(n *Node) ([]Issue, error) {
	var issues []Issue
	for _, f := range n.Fields {
		if !v.mapping.IsRootField(f.Name) {
			issues = append(issues, Issue{
				BlockID: n.ID, BlockType: n.Type, Field: f.Name,
				Reason: "root block does not declare this field",
			})
		}
	}
	return issues, nil
}
