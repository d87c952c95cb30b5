// Package classifier scores a single UI element for the username, password
// and one-time-code roles. Each role is scored independently with a strict
// cascade: platform hint, autocomplete attribute, input type, then keyword
// matching on the element's id, hint and name. The first tier that applies
// decides the level.
package classifier

import (
	"slices"
	"strconv"
	"strings"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
)

// Profile is the classification of one node, independent of its position in
// the tree.
type Profile struct {
	// Relevant fields take part in matching and get a traversal index.
	Relevant bool

	Username model.CertaintyLevel
	Password model.CertaintyLevel
	Otp      model.CertaintyLevel

	HasHintUsername                bool
	HasHintPassword                bool
	HasHintNewPassword             bool
	HasHintOtp                     bool
	HasAutocompleteCurrentPassword bool
	CouldBeTwoStepHiddenUsername   bool
	CouldBeTwoStepHiddenPassword   bool
}

// Attrs turns the profile into FormField attributes.
func (p Profile) Attrs(node *model.ViewNode, index int, webOrigin string) model.FieldAttrs {
	return model.FieldAttrs{
		ID:                             node.ID,
		Index:                          index,
		Visible:                        node.Visible,
		Focused:                        node.Focused,
		WebOrigin:                      webOrigin,
		Username:                       p.Username,
		Password:                       p.Password,
		Otp:                            p.Otp,
		HasHintUsername:                p.HasHintUsername,
		HasHintPassword:                p.HasHintPassword,
		HasHintNewPassword:             p.HasHintNewPassword,
		HasHintOtp:                     p.HasHintOtp,
		HasAutocompleteCurrentPassword: p.HasAutocompleteCurrentPassword,
		CouldBeTwoStepHiddenUsername:   p.CouldBeTwoStepHiddenUsername,
		CouldBeTwoStepHiddenPassword:   p.CouldBeTwoStepHiddenPassword,
	}
}

// facts are the raw signals read off a node, all lower-cased.
type facts struct {
	fieldID   string
	hint      string
	htmlName  string
	autofill  []string
	autofillT model.AutofillType
	inputType int
	visible   bool

	isHTMLField   bool
	htmlType      string
	inputMode     string
	maxLength     *int
	autocomplete  []string
	isAndroidText bool
}

func readFacts(n *model.ViewNode) facts {
	f := facts{
		hint:          strings.ToLower(n.Hint),
		autofillT:     n.AutofillType,
		inputType:     n.InputType,
		visible:       n.Visible,
		isAndroidText: slices.Contains(textFieldClassNames, n.ClassName),
	}
	for _, h := range n.AutofillHints {
		f.autofill = append(f.autofill, strings.ToLower(strings.TrimSpace(h)))
	}

	htmlID, hasHTMLID := n.HTMLInfo.Attr("id")
	switch {
	case hasHTMLID && htmlID != "":
		f.fieldID = htmlID
	default:
		f.fieldID = strings.ToLower(n.IDEntry)
	}

	if n.HTMLInfo != nil {
		f.isHTMLField = strings.EqualFold(n.HTMLInfo.Tag, "input")
		f.htmlName, _ = n.HTMLInfo.Attr("name")
		f.inputMode, _ = n.HTMLInfo.Attr("inputmode")
		if t, ok := n.HTMLInfo.Attr("type"); ok && t != "" {
			f.htmlType = t
		} else {
			f.htmlType = "text"
		}
		if ml, ok := n.HTMLInfo.Attr("maxlength"); ok {
			if v, err := strconv.Atoi(strings.TrimSpace(ml)); err == nil {
				f.maxLength = &v
			}
		}
		if ac, ok := n.HTMLInfo.Attr("autocomplete"); ok {
			f.autocomplete = strings.Fields(ac)
		}
	}
	return f
}

func (f facts) anyTermMatches(terms []string) bool {
	for _, t := range terms {
		if strings.Contains(f.fieldID, t) || strings.Contains(f.hint, t) || strings.Contains(f.htmlName, t) {
			return true
		}
	}
	return false
}

func (f facts) anyTermEquals(terms []string) bool {
	for _, t := range terms {
		if f.fieldID == t || f.hint == t || f.htmlName == t {
			return true
		}
	}
	return false
}

func (f facts) hasAutofillHint(hints []string) bool {
	for _, h := range hints {
		if slices.Contains(f.autofill, strings.ToLower(h)) {
			return true
		}
	}
	return false
}

func (f facts) hasAutocomplete(token string) bool {
	return slices.Contains(f.autocomplete, token)
}

func (f facts) isHTMLTextField() bool {
	return f.isHTMLField && slices.Contains(htmlTypesFillable, f.htmlType) && f.htmlType != "password"
}

func (f facts) isHTMLPasswordField() bool {
	return f.isHTMLField && slices.Contains(htmlTypesPassword, f.htmlType)
}

func (f facts) isAndroidPasswordField() bool {
	return f.isAndroidText && isPasswordInputType(f.inputType)
}

func (f facts) isObscured() bool {
	return f.isAndroidPasswordField() || f.isHTMLPasswordField()
}

func (f facts) isTextField() bool {
	return f.isAndroidText || (f.isHTMLField && slices.Contains(htmlTypesFillable, f.htmlType))
}

func (f facts) hasNumericKeyboard() bool {
	if f.isHTMLField {
		return f.htmlType == "tel" || f.htmlType == "number" || f.inputMode == "numeric" || f.inputMode == "tel"
	}
	class := f.inputType & model.InputTypeMaskClass
	return class == model.InputTypeClassNumber || class == model.InputTypeClassPhone
}

func (f facts) hasEmailKeyboard() bool {
	if f.isHTMLField {
		return f.htmlType == "email" || f.inputMode == "email"
	}
	if f.inputType&model.InputTypeMaskClass != model.InputTypeClassText {
		return false
	}
	v := f.inputType & model.InputTypeMaskVariation
	return v == model.InputTypeTextVariationEmailAddress || v == model.InputTypeTextVariationWebEmailAddress
}

func (f facts) maxLengthWithin(lo, hi int) bool {
	return f.maxLength != nil && *f.maxLength >= lo && *f.maxLength <= hi
}

func isPasswordInputType(inputType int) bool {
	class := inputType & model.InputTypeMaskClass
	variation := inputType & model.InputTypeMaskVariation
	switch class {
	case model.InputTypeClassNumber:
		return variation == model.InputTypeNumberVariationPassword
	case model.InputTypeClassText:
		return variation == model.InputTypeTextVariationPassword ||
			variation == model.InputTypeTextVariationVisiblePassword ||
			variation == model.InputTypeTextVariationWebPassword
	default:
		return false
	}
}

// Classify scores n. Nodes that are not plausible text-entry controls come
// back with Relevant == false and every role at CertaintyNone.
func Classify(n *model.ViewNode) Profile {
	if n == nil {
		return Profile{}
	}
	f := readFacts(n)
	var p Profile

	excludedByHints := len(f.autofill) > 0 && !f.hasAutofillHint(hintsFillable)

	p.HasHintUsername = f.hasAutofillHint(hintsUsername) || f.hasAutocomplete("username")
	p.HasHintNewPassword = f.hasAutofillHint(hintsNewPassword) || f.hasAutocomplete("new-password")
	p.HasAutocompleteCurrentPassword = f.hasAutocomplete("current-password")
	p.HasHintPassword = f.hasAutofillHint(hintsPassword) || p.HasAutocompleteCurrentPassword || p.HasHintNewPassword
	p.HasHintOtp = f.hasAutofillHint(hintsOtp) || f.hasAutocomplete("one-time-code")

	// Hidden inputs are kept only where sites use them to help password
	// managers across the steps of a two-step login.
	p.CouldBeTwoStepHiddenUsername = !f.visible && f.isHTMLTextField() && f.hasAutocomplete("username")
	p.CouldBeTwoStepHiddenPassword = !f.visible && f.isHTMLPasswordField() &&
		(p.HasAutocompleteCurrentPassword || len(f.autocomplete) == 0)

	p.Relevant = f.isTextField() &&
		f.autofillT == model.AutofillTypeText &&
		!excludedByHints &&
		(f.visible || p.CouldBeTwoStepHiddenUsername || p.CouldBeTwoStepHiddenPassword)
	if !p.Relevant || f.anyTermMatches(excludedTerms) {
		return p
	}

	p.Password = passwordCertainty(f)
	if p.Password < model.CertaintyLikely {
		p.Otp = otpCertainty(f)
		if p.Otp < model.CertaintyCertain {
			p.Username = usernameCertainty(f)
		}
	}
	return p
}

func passwordCertainty(f facts) model.CertaintyLevel {
	switch {
	case f.hasAutofillHint(hintsPassword):
		return model.CertaintyCertain
	case f.isHTMLField && (f.hasAutocomplete("current-password") || f.hasAutocomplete("new-password")):
		return model.CertaintyCertain
	case f.isObscured():
		return model.CertaintyLikely
	case f.anyTermMatches(passwordTerms):
		return model.CertaintyPossible
	default:
		return model.CertaintyNone
	}
}

func otpCertainty(f facts) model.CertaintyLevel {
	switch {
	case f.hasAutofillHint(hintsOtp):
		return model.CertaintyCertain
	case f.isHTMLField && f.hasAutocomplete("one-time-code"):
		return model.CertaintyCertain
	case f.hasNumericKeyboard() && (f.maxLengthWithin(4, 8) || f.anyTermMatches(otpTerms)):
		return model.CertaintyLikely
	case f.anyTermMatches(otpTerms):
		return model.CertaintyPossible
	case (f.maxLength == nil || f.maxLengthWithin(6, 8)) && f.anyTermEquals(otpExactTerms):
		return model.CertaintyPossible
	default:
		return model.CertaintyNone
	}
}

func usernameCertainty(f facts) model.CertaintyLevel {
	switch {
	case f.hasAutofillHint(hintsUsername):
		return model.CertaintyCertain
	case f.hasAutofillHint(hintsEmail):
		return model.CertaintyLikely
	case f.isHTMLField && f.hasAutocomplete("username"):
		return model.CertaintyCertain
	case f.isHTMLField && f.hasAutocomplete("email"):
		return model.CertaintyLikely
	case f.hasEmailKeyboard():
		return model.CertaintyLikely
	case f.anyTermMatches(usernameTerms):
		return model.CertaintyPossible
	default:
		return model.CertaintyNone
	}
}
