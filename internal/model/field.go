package model

import "fmt"

// FieldAttrs is the full set of values a FormField is created from.
type FieldAttrs struct {
	ID        AutofillID
	Index     int
	Visible   bool
	Focused   bool
	WebOrigin string

	Username CertaintyLevel
	Password CertaintyLevel
	Otp      CertaintyLevel

	HasHintUsername                bool
	HasHintPassword                bool
	HasHintNewPassword             bool
	HasHintOtp                     bool
	HasAutocompleteCurrentPassword bool
	CouldBeTwoStepHiddenUsername   bool
	CouldBeTwoStepHiddenPassword   bool
}

// FormField is one normalized, classified UI element. It is created once per
// traversal and never changes afterwards.
type FormField struct {
	a FieldAttrs
}

// NewFormField freezes attrs into a FormField.
func NewFormField(attrs FieldAttrs) *FormField {
	return &FormField{a: attrs}
}

func (f *FormField) ID() AutofillID { return f.a.ID }

// Index is the traversal position among relevant fields.
func (f *FormField) Index() int { return f.a.Index }

func (f *FormField) Visible() bool { return f.a.Visible }
func (f *FormField) Focused() bool { return f.a.Focused }

// WebOrigin is the origin declared by or inherited into this field; "" when
// the field belongs to no web content.
func (f *FormField) WebOrigin() string { return f.a.WebOrigin }

func (f *FormField) UsernameCertainty() CertaintyLevel { return f.a.Username }
func (f *FormField) PasswordCertainty() CertaintyLevel { return f.a.Password }
func (f *FormField) OtpCertainty() CertaintyLevel      { return f.a.Otp }

func (f *FormField) HasHintUsername() bool    { return f.a.HasHintUsername }
func (f *FormField) HasHintPassword() bool    { return f.a.HasHintPassword }
func (f *FormField) HasHintNewPassword() bool { return f.a.HasHintNewPassword }
func (f *FormField) HasHintOtp() bool         { return f.a.HasHintOtp }

func (f *FormField) HasAutocompleteCurrentPassword() bool {
	return f.a.HasAutocompleteCurrentPassword
}

// CouldBeTwoStepHiddenUsername is set for invisible username inputs that
// sites keep around so the first step of a two-step login can be saved.
func (f *FormField) CouldBeTwoStepHiddenUsername() bool {
	return f.a.CouldBeTwoStepHiddenUsername
}

func (f *FormField) CouldBeTwoStepHiddenPassword() bool {
	return f.a.CouldBeTwoStepHiddenPassword
}

// DirectlyPrecedes reports whether f comes right before that.
func (f *FormField) DirectlyPrecedes(that *FormField) bool {
	if that == nil {
		return false
	}
	return f.a.Index == that.a.Index-1
}

// DirectlyPrecedesAll reports whether f comes right before the first of those.
func (f *FormField) DirectlyPrecedesAll(those []*FormField) bool {
	if len(those) == 0 {
		return false
	}
	first := those[0].a.Index
	for _, t := range those[1:] {
		first = min(first, t.a.Index)
	}
	return f.a.Index == first-1
}

// DirectlyFollowsAll reports whether f comes right after the last of those.
func (f *FormField) DirectlyFollowsAll(those []*FormField) bool {
	if len(those) == 0 {
		return false
	}
	last := those[0].a.Index
	for _, t := range those[1:] {
		last = max(last, t.a.Index)
	}
	return f.a.Index == last+1
}

func (f *FormField) String() string {
	return fmt.Sprintf("FormField{id=%s index=%d visible=%t focused=%t origin=%q user=%s pass=%s otp=%s}",
		f.a.ID, f.a.Index, f.a.Visible, f.a.Focused, f.a.WebOrigin, f.a.Username, f.a.Password, f.a.Otp)
}
