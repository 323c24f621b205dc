package block

import "sync"

// RootSelection is the editor's name for the dossier root block. Selecting
// it, or nothing, shows the report types.
const RootSelection = "OPINION"

// Session is one editor's palette context: the block type it last selected.
type Session struct {
	catalog *Catalog

	mu       sync.Mutex
	selected string
}

// NewSession creates a session with nothing selected.
func NewSession(catalog *Catalog) *Session {
	return &Session{catalog: catalog}
}

// Select records the block type the editor selected.
func (s *Session) Select(typeID string) {
	s.mu.Lock()
	s.selected = typeID
	s.mu.Unlock()
}

// Selected returns the current selection.
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Children returns the blocks the editor may offer for the current
// selection: the report types when nothing or the root is selected, the
// immediate children of a known type, and nothing for an unknown type.
func (s *Session) Children() ([]Definition, error) {
	selected := s.Selected()
	if selected == "" || selected == RootSelection {
		return s.catalog.RootBlockTypes()
	}
	return s.catalog.ResolveChildren(selected, false)
}
