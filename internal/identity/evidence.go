package identity

// Confidence grades how strong a piece of duplicate evidence is.
type Confidence int

// Confidence levels, ordered so a larger value is stronger.
const (
	ConfidencePossible Confidence = iota + 1
	ConfidenceExact
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceExact:
		return "exact"
	case ConfidencePossible:
		return "possible"
	default:
		return "none"
	}
}

// MarshalJSON renders the confidence as its string form.
func (c Confidence) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// MatchField names the contact field that produced a match.
type MatchField int

// Match fields.
const (
	FieldEmail MatchField = iota + 1
	FieldPhone
	FieldName
)

func (f MatchField) String() string {
	switch f {
	case FieldEmail:
		return "email"
	case FieldPhone:
		return "phone"
	case FieldName:
		return "name"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the field as its string form.
func (f MatchField) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}

// Evidence is the result of comparing two contacts. Only the three
// constructors below exist, so an exact name match or a possible email
// match cannot be represented. The zero value means "no evidence".
type Evidence struct {
	confidence Confidence
	field      MatchField
}

// ExactEmail is evidence from normalized email equality.
func ExactEmail() Evidence { return Evidence{ConfidenceExact, FieldEmail} }

// ExactPhone is evidence from normalized phone equality.
func ExactPhone() Evidence { return Evidence{ConfidenceExact, FieldPhone} }

// PossibleName is evidence from a fuzzy name match.
func PossibleName() Evidence { return Evidence{ConfidencePossible, FieldName} }

// Confidence reports the evidence strength.
func (e Evidence) Confidence() Confidence { return e.confidence }

// Field reports which field produced the evidence.
func (e Evidence) Field() MatchField { return e.field }

// IsZero reports whether no evidence was found.
func (e Evidence) IsZero() bool { return e.confidence == 0 }
