// Package rules turns classified fields into a scenario by trying an ordered
// list of declarative rules; the first rule that resolves wins.
package rules

import (
	"errors"
	"fmt"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/origin"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/scenario"
)

var ErrNoRules = errors.New("rules: strategy without rules")

// Strategy is an immutable, ordered rule list.
type Strategy struct {
	rules  []Rule
	logger logging.Logger
}

// NewStrategy validates rules and returns a Strategy that tries them in order.
func NewStrategy(rules []Rule, logger logging.Logger) (*Strategy, error) {
	if len(rules) == 0 {
		return nil, ErrNoRules
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	for i, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("rule %d: missing name", i)
		}
		if len(r.Matchers) == 0 {
			return nil, fmt.Errorf("rule %q: no matchers", r.Name)
		}
		for j, m := range r.Matchers {
			if m.Take == nil {
				return nil, fmt.Errorf("rule %q matcher %d: nil take predicate", r.Name, j)
			}
			if m.Pair && (m.Role == RoleUsername || m.Role == RoleOtp) {
				return nil, fmt.Errorf("rule %q matcher %d: %s cannot be matched as a pair", r.Name, j, m.Role)
			}
		}
	}
	return &Strategy{
		rules:  append([]Rule(nil), rules...),
		logger: logger.With(logging.Field{Key: "component", Value: "rules"}),
	}, nil
}

// Rules returns a copy of the rule list.
func (s *Strategy) Rules() []Rule { return append([]Rule(nil), s.rules...) }

// Outcome is the result of Match.
type Outcome struct {
	Scenario scenario.Scenario[*model.FormField]
	Rule     string
	// Vetoed lists rules that resolved but failed the origin check.
	Vetoed []string
}

// Match tries every applicable rule in order and returns the first scenario
// that resolves and passes the origin check. Outcome.Scenario is nil when no
// rule succeeds.
func (s *Strategy) Match(fields []*model.FormField, singleOriginMode, manual bool) Outcome {
	p := newPools(fields)
	var out Outcome
	for _, r := range s.rules {
		if r.ApplyOnManualRequestOnly && !manual {
			continue
		}
		if singleOriginMode && !r.ApplyInSingleOriginMode {
			continue
		}
		sc, ok := apply(r, p)
		if !ok {
			continue
		}
		if !origin.PassesCheck(sc, singleOriginMode) {
			s.logger.Debug("rule vetoed by origin check", logging.Field{Key: "rule", Value: r.Name})
			out.Vetoed = append(out.Vetoed, r.Name)
			continue
		}
		s.logger.Debug("rule matched",
			logging.Field{Key: "rule", Value: r.Name},
			logging.Field{Key: "fields", Value: len(sc.AllFields())})
		out.Scenario = sc
		out.Rule = r.Name
		return out
	}
	s.logger.Debug("no rule matched", logging.Field{Key: "candidates", Value: len(fields)})
	return out
}

type pools struct {
	username []*model.FormField
	otp      []*model.FormField
	password []*model.FormField
}

func newPools(fields []*model.FormField) pools {
	var p pools
	for _, f := range fields {
		if f.UsernameCertainty().AtLeast(model.CertaintyPossible) {
			p.username = append(p.username, f)
		}
		if f.OtpCertainty().AtLeast(model.CertaintyPossible) {
			p.otp = append(p.otp, f)
		}
		if f.PasswordCertainty().AtLeast(model.CertaintyPossible) {
			p.password = append(p.password, f)
		}
	}
	return p
}

func (p pools) forRole(r Role) []*model.FormField {
	switch r {
	case RoleUsername:
		return p.username
	case RoleOtp:
		return p.otp
	default:
		return p.password
	}
}

type resolution int

const (
	resolvedNone resolution = iota
	resolvedOne
	resolvedAmbiguous
)

func apply(r Rule, p pools) (scenario.Scenario[*model.FormField], bool) {
	var (
		b       scenario.Builder[*model.FormField]
		matched []*model.FormField
	)
	for _, m := range r.Matchers {
		chosen, res := m.match(p.forRole(m.Role), matched)
		if res != resolvedOne {
			// Ambiguity on an optional role leaves the role empty.
			if m.Optional {
				continue
			}
			return nil, false
		}
		matched = append(matched, chosen...)
		switch m.Role {
		case RoleUsername:
			b.SetUsername(chosen[0])
			b.FillUsername = chosen[0].Visible()
		case RoleOtp:
			b.SetOtp(chosen[0])
		case RoleCurrentPassword:
			b.CurrentPassword = append(b.CurrentPassword, chosen...)
		case RoleNewPassword:
			b.NewPassword = append(b.NewPassword, chosen...)
		case RoleGenericPassword:
			b.GenericPassword = append(b.GenericPassword, chosen...)
		}
	}
	sc, err := b.Build()
	if err != nil {
		return nil, false
	}
	return sc, true
}

func (m Matcher) match(pool, matched []*model.FormField) ([]*model.FormField, resolution) {
	var eligible []*model.FormField
	for _, f := range pool {
		if !f.Visible() && !m.MatchHidden {
			continue
		}
		if contains(matched, f) {
			continue
		}
		eligible = append(eligible, f)
	}

	var candidates [][]*model.FormField
	if m.Pair {
		for i := 0; i+1 < len(eligible); i++ {
			if eligible[i].DirectlyPrecedes(eligible[i+1]) {
				candidates = append(candidates, []*model.FormField{eligible[i], eligible[i+1]})
			}
		}
	} else {
		for _, f := range eligible {
			candidates = append(candidates, []*model.FormField{f})
		}
	}

	candidates = filter(candidates, m.Take, matched)
	switch len(candidates) {
	case 0:
		return nil, resolvedNone
	case 1:
		return candidates[0], resolvedOne
	}
	for _, tb := range m.TieBreakers {
		narrowed := filter(candidates, tb, matched)
		switch len(narrowed) {
		case 0:
			continue
		case 1:
			return narrowed[0], resolvedOne
		default:
			candidates = narrowed
		}
	}
	return nil, resolvedAmbiguous
}

func filter(candidates [][]*model.FormField, pred Predicate, matched []*model.FormField) [][]*model.FormField {
	var out [][]*model.FormField
	for _, c := range candidates {
		if pred(c, matched) {
			out = append(out, c)
		}
	}
	return out
}

func contains(fields []*model.FormField, f *model.FormField) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}
