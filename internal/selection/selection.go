// Package selection tracks which single record is expanded for detail
// view. Selection is purely local state - never persisted, never synced,
// fully independent of search and filtering.
package selection

// Selector holds at most one selected record id.
type Selector struct {
	id string
}

// Toggle flips selection for the given id: selecting it if it is not the
// current selection, clearing if it is. A different id replaces the
// current one unconditionally.
func (s *Selector) Toggle(id string) {
	if s.id == id {
		s.id = ""
		return
	}
	s.id = id
}

// Selected returns the selected id and whether anything is selected.
func (s *Selector) Selected() (string, bool) {
	return s.id, s.id != ""
}

// IsSelected reports whether the given id is the current selection.
func (s *Selector) IsSelected(id string) bool {
	return s.id != "" && s.id == id
}

// Clear drops any selection.
func (s *Selector) Clear() {
	s.id = ""
}
