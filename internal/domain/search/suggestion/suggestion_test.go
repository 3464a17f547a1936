package suggestion

import "testing"

func TestNewFound(t *testing.T) {
	s := NewFound("batman", "<strong>batman</strong>")
	if s.Outcome() != Found {
		t.Errorf("Outcome() = %q", s.Outcome())
	}
	text, ok := s.Text()
	if !ok || text != "batman" {
		t.Errorf("Text() = %q, %v", text, ok)
	}
	html, ok := s.Highlighted()
	if !ok || html != "<strong>batman</strong>" {
		t.Errorf("Highlighted() = %q, %v", html, ok)
	}
}

func TestNone(t *testing.T) {
	s := None()
	if s.Outcome() != Absent {
		t.Errorf("Outcome() = %q", s.Outcome())
	}
	if _, ok := s.Text(); ok {
		t.Error("Text() ok = true for absent suggestion")
	}
}

func TestZeroValueIsAbsent(t *testing.T) {
	var s Suggestion
	if s.Outcome() != Absent {
		t.Errorf("Outcome() = %q, want absent", s.Outcome())
	}
}

func TestNewMalformed(t *testing.T) {
	s := NewMalformed()
	if s.Outcome() != Malformed {
		t.Errorf("Outcome() = %q", s.Outcome())
	}
	if _, ok := s.Highlighted(); ok {
		t.Error("Highlighted() ok = true for malformed suggestion")
	}
}
