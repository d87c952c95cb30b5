package rules

import "github.com/android-password-store/Android-Password-Store-sub001/internal/model"

// Role is the part a matched field plays in a scenario.
type Role int

const (
	RoleUsername Role = iota
	RoleOtp
	RoleCurrentPassword
	RoleNewPassword
	RoleGenericPassword
)

func (r Role) String() string {
	switch r {
	case RoleUsername:
		return "username"
	case RoleOtp:
		return "otp"
	case RoleCurrentPassword:
		return "current_password"
	case RoleNewPassword:
		return "new_password"
	case RoleGenericPassword:
		return "generic_password"
	default:
		return "unknown"
	}
}

// Predicate is evaluated on a candidate: one field, or two adjacent fields for
// pair matchers. matched holds the fields claimed by earlier matchers of the
// same rule.
type Predicate func(candidate, matched []*model.FormField) bool

// Matcher selects the field(s) for one role.
type Matcher struct {
	Role        Role
	Optional    bool
	MatchHidden bool
	Pair        bool
	Take        Predicate
	TieBreakers []Predicate
}

// Rule is an ordered list of matchers that must all resolve.
type Rule struct {
	Name                     string
	ApplyInSingleOriginMode  bool
	ApplyOnManualRequestOnly bool
	Matchers                 []Matcher
}

// Single lifts a per-field predicate.
func Single(f func(field *model.FormField, matched []*model.FormField) bool) Predicate {
	return func(c, matched []*model.FormField) bool { return f(c[0], matched) }
}

// All holds when every field of the candidate satisfies f.
func All(f func(*model.FormField) bool) Predicate {
	return func(c, _ []*model.FormField) bool {
		for _, field := range c {
			if !f(field) {
				return false
			}
		}
		return true
	}
}

// Any holds when some field of the candidate satisfies f.
func Any(f func(*model.FormField) bool) Predicate {
	return func(c, _ []*model.FormField) bool {
		for _, field := range c {
			if f(field) {
				return true
			}
		}
		return false
	}
}
