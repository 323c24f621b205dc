package dossier

// ConceptPalette is the editor view of the stored domain concepts: three
// parallel lists in storage order.
type ConceptPalette struct {
	Scripts []string `json:"scripts"`
	Names   []string `json:"names"`
	Types   []string `json:"types"`
}

// PaletteOf builds the palette view of concepts.
func PaletteOf(concepts []*DomainConcept) ConceptPalette {
	p := ConceptPalette{
		Scripts: make([]string, 0, len(concepts)),
		Names:   make([]string, 0, len(concepts)),
		Types:   make([]string, 0, len(concepts)),
	}
	for _, c := range concepts {
		p.Scripts = append(p.Scripts, c.Script)
		p.Names = append(p.Names, c.Name)
		p.Types = append(p.Types, string(c.Type))
	}
	return p
}
