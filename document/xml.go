package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// Namespaces the editor writes on the document root. They carry no meaning
// and are removed before the document is parsed or stored.
var DefaultNamespaces = []string{
	"http://www.w3.org/1999/xhtml",
	"https://developers.google.com/blockly/xml",
}

// Document is a parsed editor document.
type Document struct {
	// Blocks are the top-level blocks in document order, with next-chains
	// flattened.
	Blocks []*Node
}

// Node is one block.
type Node struct {
	Type   string
	ID     string
	Fields []FieldValue
	Inputs []Input
}

// FieldValue is a scalar field of a block.
type FieldValue struct {
	Name  string
	Value string
}

// InputKind distinguishes value sockets from statement sockets.
type InputKind string

// Input kinds.
const (
	InputValueKind     InputKind = "value"
	InputStatementKind InputKind = "statement"
)

// Input is a named socket holding nested blocks.
type Input struct {
	Name   string
	Kind   InputKind
	Blocks []*Node
}

// Field returns the value of the named field.
func (n *Node) Field(name string) (string, bool) {
	for _, f := range n.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// SetField replaces the named field or appends it.
func (n *Node) SetField(name, value string) {
	for i := range n.Fields {
		if n.Fields[i].Name == name {
			n.Fields[i].Value = value
			return
		}
	}
	n.Fields = append(n.Fields, FieldValue{Name: name, Value: value})
}

// Root returns the block carrying the document identity: the first block of
// type rootType, or the first block when none matches.
func (d *Document) Root(rootType string) *Node {
	for _, b := range d.Blocks {
		if b.Type == rootType {
			return b
		}
	}
	if len(d.Blocks) > 0 {
		return d.Blocks[0]
	}
	return nil
}

// Walk visits every block depth-first, parents before children.
func (d *Document) Walk(fn func(n *Node, parent *Node)) {
	var visit func(n, parent *Node)
	visit = func(n, parent *Node) {
		fn(n, parent)
		for _, in := range n.Inputs {
			for _, c := range in.Blocks {
				visit(c, n)
			}
		}
	}
	for _, b := range d.Blocks {
		visit(b, nil)
	}
}

// StripNamespaces removes the given default-namespace declarations.
func StripNamespaces(raw string, namespaces []string) string {
	for _, ns := range namespaces {
		raw = strings.ReplaceAll(raw, ` xmlns="`+ns+`"`, "")
		raw = strings.ReplaceAll(raw, `xmlns="`+ns+`"`, "")
	}
	return raw
}

// Normalize strips namespaces and all CR/LF characters. The result is the
// form in which documents are stored; it is never parsed for graph content
// because field values lose their line breaks.
func Normalize(raw string, namespaces []string) string {
	raw = StripNamespaces(raw, namespaces)
	raw = strings.ReplaceAll(raw, "\r", "")
	return strings.ReplaceAll(raw, "\n", "")
}

type xmlDocument struct {
	XMLName xml.Name   `xml:"xml"`
	Blocks  []xmlBlock `xml:"block"`
}

type xmlBlock struct {
	Type       string     `xml:"type,attr"`
	ID         string     `xml:"id,attr"`
	Fields     []xmlField `xml:"field"`
	Values     []xmlInput `xml:"value"`
	Statements []xmlInput `xml:"statement"`
	Next       *xmlNext   `xml:"next"`
}

type xmlField struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type xmlInput struct {
	Name   string     `xml:"name,attr"`
	Blocks []xmlBlock `xml:"block"`
}

type xmlNext struct {
	Block *xmlBlock `xml:"block"`
}

// Parse strips namespaces from raw and decodes it into a Document. Line
// breaks inside field values are kept. Malformed XML and blocks without a
// type fail with ErrTransform.
func Parse(raw string, namespaces []string) (*Document, error) {
	stripped := StripNamespaces(raw, namespaces)
	if strings.TrimSpace(stripped) == "" {
		return nil, fmt.Errorf("%w: empty document", ErrTransform)
	}

	var x xmlDocument
	dec := xml.NewDecoder(bytes.NewReader([]byte(stripped)))
	if err := dec.Decode(&x); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransform, err)
	}

	doc := &Document{}
	for i := range x.Blocks {
		nodes, err := convertChain(&x.Blocks[i])
		if err != nil {
			return nil, err
		}
		doc.Blocks = append(doc.Blocks, nodes...)
	}
	return doc, nil
}

// convertChain converts a block and its next-chain into sibling nodes.
func convertChain(b *xmlBlock) ([]*Node, error) {
	var out []*Node
	for cur := b; cur != nil; {
		n, err := convertBlock(cur)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
		if cur.Next == nil {
			break
		}
		cur = cur.Next.Block
	}
	return out, nil
}

func convertBlock(b *xmlBlock) (*Node, error) {
	if b.Type == "" {
		return nil, fmt.Errorf("%w: block %q has no type", ErrTransform, b.ID)
	}
	n := &Node{Type: b.Type, ID: b.ID}
	for _, f := range b.Fields {
		n.Fields = append(n.Fields, FieldValue{Name: f.Name, Value: f.Value})
	}
	add := func(inputs []xmlInput, kind InputKind) error {
		for _, in := range inputs {
			input := Input{Name: in.Name, Kind: kind}
			for i := range in.Blocks {
				nodes, err := convertChain(&in.Blocks[i])
				if err != nil {
					return err
				}
				input.Blocks = append(input.Blocks, nodes...)
			}
			n.Inputs = append(n.Inputs, input)
		}
		return nil
	}
	if err := add(b.Values, InputValueKind); err != nil {
		return nil, err
	}
	if err := add(b.Statements, InputStatementKind); err != nil {
		return nil, err
	}
	return n, nil
}
