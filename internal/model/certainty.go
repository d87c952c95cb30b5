package model

// CertaintyLevel is the ordered confidence that a field serves a given role.
type CertaintyLevel int

const (
	CertaintyNone CertaintyLevel = iota
	CertaintyPossible
	CertaintyLikely
	CertaintyCertain
)

// AtLeast reports whether c >= other.
func (c CertaintyLevel) AtLeast(other CertaintyLevel) bool {
	return c >= other
}

func (c CertaintyLevel) String() string {
	switch c {
	case CertaintyNone:
		return "none"
	case CertaintyPossible:
		return "possible"
	case CertaintyLikely:
		return "likely"
	case CertaintyCertain:
		return "certain"
	default:
		return "unknown"
	}
}
