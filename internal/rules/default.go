package rules

import (
	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
)

// Rule names of the default strategy.
const (
	RuleChangePassword    = "change_password"
	RuleTwoStepHiddenUser = "two_step_hidden_username"
	RuleCurrentPassword   = "current_password"
	RuleNewPasswordPair   = "new_password_pair"
	RuleGenericPassword   = "generic_password"
	RuleFocusedOtp        = "focused_otp"
	RuleFocusedUsername   = "focused_username"
	RuleManualPassword    = "manual_focused_password"
	RuleManualUsername    = "manual_focused_username"
)

func focused(f *model.FormField) bool { return f.Focused() }

func passwordAtLeast(c model.CertaintyLevel) func(*model.FormField) bool {
	return func(f *model.FormField) bool { return f.PasswordCertainty().AtLeast(c) }
}

func usernameAtLeast(c model.CertaintyLevel) func(*model.FormField) bool {
	return func(f *model.FormField) bool { return f.UsernameCertainty().AtLeast(c) }
}

func otpAtLeast(c model.CertaintyLevel) func(*model.FormField) bool {
	return func(f *model.FormField) bool { return f.OtpCertainty().AtLeast(c) }
}

// optionalUsername is the username matcher shared by the password rules.
// It must come after the password matchers so that adjacency can be checked.
func optionalUsername() Matcher {
	return Matcher{
		Role:     RoleUsername,
		Optional: true,
		Take:     All(usernameAtLeast(model.CertaintyPossible)),
		TieBreakers: []Predicate{
			Single(func(f *model.FormField, matched []*model.FormField) bool {
				return f.DirectlyPrecedesAll(matched)
			}),
			All(usernameAtLeast(model.CertaintyCertain)),
			All(usernameAtLeast(model.CertaintyLikely)),
			All(focused),
		},
	}
}

// DefaultRules returns the built-in rules, most specific first.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: RuleChangePassword,
			Matchers: []Matcher{
				{
					Role:        RoleNewPassword,
					Pair:        true,
					Take:        All((*model.FormField).HasHintNewPassword),
					TieBreakers: []Predicate{Any(focused)},
				},
				{
					Role:     RoleCurrentPassword,
					Optional: true,
					Take: Single(func(f *model.FormField, matched []*model.FormField) bool {
						return f.PasswordCertainty().AtLeast(model.CertaintyLikely) &&
							!f.HasHintNewPassword() &&
							(f.DirectlyPrecedesAll(matched) || f.DirectlyFollowsAll(matched))
					}),
				},
				optionalUsername(),
			},
		},
		{
			Name: RuleTwoStepHiddenUser,
			Matchers: []Matcher{
				{
					Role: RoleCurrentPassword,
					Take: All(func(f *model.FormField) bool {
						return f.HasAutocompleteCurrentPassword() && f.Focused()
					}),
				},
				{
					Role:        RoleUsername,
					MatchHidden: true,
					Take:        All((*model.FormField).CouldBeTwoStepHiddenUsername),
				},
			},
		},
		{
			Name: RuleCurrentPassword,
			Matchers: []Matcher{
				{
					Role:        RoleCurrentPassword,
					Take:        All((*model.FormField).HasAutocompleteCurrentPassword),
					TieBreakers: []Predicate{All(focused)},
				},
				optionalUsername(),
			},
		},
		{
			Name: RuleNewPasswordPair,
			Matchers: []Matcher{
				{
					Role: RoleNewPassword,
					Pair: true,
					Take: All(passwordAtLeast(model.CertaintyLikely)),
					TieBreakers: []Predicate{
						All(passwordAtLeast(model.CertaintyCertain)),
						Any(focused),
					},
				},
				optionalUsername(),
			},
		},
		{
			Name: RuleGenericPassword,
			Matchers: []Matcher{
				{
					Role: RoleGenericPassword,
					Take: All(passwordAtLeast(model.CertaintyLikely)),
					TieBreakers: []Predicate{
						All(passwordAtLeast(model.CertaintyCertain)),
						All(focused),
					},
				},
				optionalUsername(),
			},
		},
		{
			Name:                    RuleFocusedOtp,
			ApplyInSingleOriginMode: true,
			Matchers: []Matcher{
				{
					Role: RoleOtp,
					Take: All(func(f *model.FormField) bool {
						return f.OtpCertainty().AtLeast(model.CertaintyPossible) && f.Focused()
					}),
					TieBreakers: []Predicate{
						All(otpAtLeast(model.CertaintyLikely)),
						All(otpAtLeast(model.CertaintyCertain)),
					},
				},
			},
		},
		{
			Name:                    RuleFocusedUsername,
			ApplyInSingleOriginMode: true,
			Matchers: []Matcher{
				{
					Role: RoleUsername,
					Take: All(func(f *model.FormField) bool {
						return f.UsernameCertainty().AtLeast(model.CertaintyLikely) && f.Focused()
					}),
				},
			},
		},
		{
			Name:                     RuleManualPassword,
			ApplyInSingleOriginMode:  true,
			ApplyOnManualRequestOnly: true,
			Matchers: []Matcher{
				{
					Role: RoleGenericPassword,
					Take: All(focused),
				},
			},
		},
		{
			Name:                     RuleManualUsername,
			ApplyInSingleOriginMode:  true,
			ApplyOnManualRequestOnly: true,
			Matchers: []Matcher{
				{
					Role: RoleUsername,
					Take: All(focused),
				},
			},
		},
	}
}

// DefaultStrategy returns a Strategy over DefaultRules.
func DefaultStrategy(logger logging.Logger) *Strategy {
	s, err := NewStrategy(DefaultRules(), logger)
	if err != nil {
		panic("rules: invalid default rules: " + err.Error())
	}
	return s
}
