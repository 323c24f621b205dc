package block

// FieldKind is the editor field type of an attribute.
type FieldKind string

// Field kinds understood by the editor.
const (
	FieldInput    FieldKind = "field_input"
	FieldDate     FieldKind = "field_date"
	FieldCheckbox FieldKind = "field_checkbox"
	FieldNumber   FieldKind = "field_number"
	FieldColour   FieldKind = "field_colour"
	FieldAngle    FieldKind = "field_angle"
	FieldDropdown FieldKind = "field_dropdown"

	// InputValue is the kind of every group attribute: a socket for a
	// nested block.
	InputValue FieldKind = "input_value"
)

// Option is one entry of a dropdown.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Constraints carries the auxiliary settings of a field. Unset pointers
// mean no constraint.
type Constraints struct {
	Precision  *int     `json:"precision,omitempty"`
	Min        *int     `json:"min,omitempty"`
	Options    []Option `json:"options,omitempty"`
	NestedType string   `json:"nested_type,omitempty"`
}

// Field holds what every attribute variant has in common.
type Field struct {
	// Position is the 1-based position after ordering.
	Position int `json:"position"`
	// Order is the raw ordering key from the ontology, "" when absent.
	Order string `json:"order"`
	// TypeID is the predicate IRI for simple attributes and the nested
	// block type for group attributes.
	TypeID      string      `json:"type_id"`
	Name        string      `json:"name"`
	Message     string      `json:"message"`
	Kind        FieldKind   `json:"kind"`
	Constraints Constraints `json:"constraints"`
}

// Attribute is either a *SimpleAttribute or a *GroupAttribute.
type Attribute interface {
	Common() *Field
	attribute()
}

// SimpleAttribute is a leaf field bound to one ontology property.
type SimpleAttribute struct {
	Field
	// Node is the ontology node that declared the attribute.
	Node string `json:"node"`
	// Predicate is the property the field edits.
	Predicate string `json:"predicate"`
	// Range is the first declared range of Predicate, "" when undeclared.
	Range string `json:"range,omitempty"`
}

// GroupAttribute is a field that nests another block type.
type GroupAttribute struct {
	Field
	// BlockType is the nested block type identifier.
	BlockType string `json:"block_type"`
}

// Common returns the shared fields.
func (a *SimpleAttribute) Common() *Field { return &a.Field }

// Common returns the shared fields.
func (a *GroupAttribute) Common() *Field { return &a.Field }

func (*SimpleAttribute) attribute() {}
func (*GroupAttribute) attribute()  {}

func intPtr(v int) *int { return &v }
