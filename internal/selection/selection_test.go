package selection

import "testing"

func TestToggleSelects(t *testing.T) {
	var s Selector
	s.Toggle("x")

	id, ok := s.Selected()
	if !ok || id != "x" {
		t.Errorf("expected x selected, got %q (%v)", id, ok)
	}
}

func TestToggleSameIDClears(t *testing.T) {
	var s Selector
	s.Toggle("x")
	s.Toggle("x")

	if _, ok := s.Selected(); ok {
		t.Error("toggling the selected id should clear the selection")
	}
}

func TestToggleDifferentIDReplaces(t *testing.T) {
	var s Selector
	s.Toggle("x")
	s.Toggle("y")

	id, ok := s.Selected()
	if !ok || id != "y" {
		t.Errorf("expected y selected, got %q (%v)", id, ok)
	}
	if s.IsSelected("x") {
		t.Error("x should no longer be selected")
	}
}

func TestClear(t *testing.T) {
	var s Selector
	s.Toggle("x")
	s.Clear()

	if _, ok := s.Selected(); ok {
		t.Error("expected no selection after Clear")
	}
}

func TestIsSelectedEmptyID(t *testing.T) {
	var s Selector
	if s.IsSelected("") {
		t.Error("empty id must never count as selected")
	}
}
