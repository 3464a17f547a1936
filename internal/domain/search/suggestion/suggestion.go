package suggestion

// Outcome distinguishes why a suggestion is or is not present.
type Outcome string

const (
	// Found means the index returned a correction.
	Found Outcome = "found"
	// Absent means no correction was requested or the index had none to offer.
	Absent Outcome = "absent"
	// Malformed means the suggest block could not be decoded.
	Malformed Outcome = "malformed"
)

// Suggestion is an optional did-you-mean correction.
type Suggestion struct {
	outcome     Outcome
	text        string
	highlighted string
}

// NewFound creates a suggestion carrying a correction and its highlighted form.
func NewFound(text, highlighted string) Suggestion {
	return Suggestion{outcome: Found, text: text, highlighted: highlighted}
}

// None returns an absent suggestion.
func None() Suggestion { return Suggestion{outcome: Absent} }

// NewMalformed returns a suggestion marking an undecodable suggest block.
func NewMalformed() Suggestion { return Suggestion{outcome: Malformed} }

// Outcome returns the extraction outcome. The zero value reports Absent.
func (s Suggestion) Outcome() Outcome {
	if s.outcome == "" {
		return Absent
	}
	return s.outcome
}

// Text returns the corrected query and whether one exists.
func (s Suggestion) Text() (string, bool) {
	return s.text, s.outcome == Found
}

// Highlighted returns the corrected query with the changed span wrapped in <strong> tags.
func (s Suggestion) Highlighted() (string, bool) {
	return s.highlighted, s.outcome == Found
}
