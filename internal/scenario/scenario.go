// Package scenario holds the result of matching: which fields of a screen are
// the username, one-time-code and password fields, and which of them to fill
// or save for a given action.
package scenario

import (
	"errors"
	"slices"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
)

// ErrMixedPasswords is returned by Build when both generic and classified
// password fields are set.
var ErrMixedPasswords = errors.New("scenario: generic and classified password fields are mutually exclusive")

// Scenario is either *Classified or *Generic.
type Scenario[T comparable] interface {
	Username() (T, bool)
	// FillUsername is false for username fields that are matched only to be
	// saved, such as the hidden username of a two-step login.
	FillUsername() bool
	Otp() (T, bool)

	AllFields() []T
	FieldsToSave() []T
	FieldsToFillOn(action model.AutofillAction) []T

	passwordFieldsToSave() []T
	passwordFieldsToFillOn(action model.AutofillAction) []T
}

type common[T comparable] struct {
	username     T
	hasUsername  bool
	fillUsername bool
	otp          T
	hasOtp       bool
}

func (c common[T]) Username() (T, bool) { return c.username, c.hasUsername }
func (c common[T]) FillUsername() bool  { return c.fillUsername }
func (c common[T]) Otp() (T, bool)      { return c.otp, c.hasOtp }

func (c common[T]) head() []T {
	var out []T
	if c.hasUsername {
		out = append(out, c.username)
	}
	if c.hasOtp {
		out = append(out, c.otp)
	}
	return out
}

// Classified distinguishes current from new password fields.
type Classified[T comparable] struct {
	common[T]
	currentPassword []T
	newPassword     []T
}

func (s *Classified[T]) CurrentPassword() []T { return slices.Clone(s.currentPassword) }
func (s *Classified[T]) NewPassword() []T     { return slices.Clone(s.newPassword) }

func (s *Classified[T]) AllFields() []T {
	return slices.Concat(s.head(), s.currentPassword, s.newPassword)
}

func (s *Classified[T]) passwordFieldsToSave() []T {
	if len(s.newPassword) > 0 {
		return slices.Clone(s.newPassword)
	}
	return slices.Clone(s.currentPassword)
}

func (s *Classified[T]) passwordFieldsToFillOn(action model.AutofillAction) []T {
	switch action {
	case model.ActionMatch, model.ActionSearch:
		return slices.Clone(s.currentPassword)
	case model.ActionGenerate:
		return slices.Clone(s.newPassword)
	default:
		return nil
	}
}

func (s *Classified[T]) FieldsToSave() []T { return fieldsToSave[T](s) }
func (s *Classified[T]) FieldsToFillOn(action model.AutofillAction) []T {
	return fieldsToFillOn[T](s, action)
}

// Generic has password fields of unknown purpose.
type Generic[T comparable] struct {
	common[T]
	genericPassword []T
}

func (s *Generic[T]) GenericPassword() []T { return slices.Clone(s.genericPassword) }

func (s *Generic[T]) AllFields() []T {
	return slices.Concat(s.head(), s.genericPassword)
}

func (s *Generic[T]) passwordFieldsToSave() []T {
	return slices.Clone(s.genericPassword)
}

func (s *Generic[T]) passwordFieldsToFillOn(action model.AutofillAction) []T {
	switch action {
	case model.ActionMatch, model.ActionSearch:
		// Several unclassified password fields on a login form is ambiguous.
		if len(s.genericPassword) == 1 {
			return slices.Clone(s.genericPassword)
		}
		return nil
	case model.ActionGenerate:
		return slices.Clone(s.genericPassword)
	default:
		return nil
	}
}

func (s *Generic[T]) FieldsToSave() []T { return fieldsToSave[T](s) }
func (s *Generic[T]) FieldsToFillOn(action model.AutofillAction) []T {
	return fieldsToFillOn[T](s, action)
}

func fieldsToSave[T comparable](s Scenario[T]) []T {
	var out []T
	if u, ok := s.Username(); ok {
		out = append(out, u)
	}
	return append(out, s.passwordFieldsToSave()...)
}

func fieldsToFillOn[T comparable](s Scenario[T], action model.AutofillAction) []T {
	otp, hasOtp := s.Otp()
	if action == model.ActionFillOtpFromSms {
		if hasOtp {
			return []T{otp}
		}
		return nil
	}

	credentials := s.passwordFieldsToFillOn(action)
	if hasOtp {
		credentials = append(credentials, otp)
	}
	username, hasUsername := s.Username()
	fillUsername := hasUsername && s.FillUsername()
	switch {
	case len(credentials) > 0 && fillUsername:
		return append([]T{username}, credentials...)
	case len(credentials) > 0:
		return credentials
	case fillUsername:
		return []T{username}
	default:
		return nil
	}
}

// HasFieldsToFillOn reports whether action would fill anything.
func HasFieldsToFillOn[T comparable](s Scenario[T], action model.AutofillAction) bool {
	return len(s.FieldsToFillOn(action)) > 0
}

func HasFieldsToSave[T comparable](s Scenario[T]) bool {
	return len(s.FieldsToSave()) > 0
}

// HasPasswordFieldsToSave reports whether saving would capture a password.
func HasPasswordFieldsToSave[T comparable](s Scenario[T]) bool {
	return len(s.passwordFieldsToSave()) > 0
}

func HasUsername[T comparable](s Scenario[T]) bool {
	_, ok := s.Username()
	return ok
}

// PasswordFieldsToSave returns the password part of FieldsToSave.
func PasswordFieldsToSave[T comparable](s Scenario[T]) []T {
	return s.passwordFieldsToSave()
}

// Builder collects matched fields. A zero Builder is ready to use.
type Builder[T comparable] struct {
	username     T
	hasUsername  bool
	otp          T
	hasOtp       bool
	FillUsername bool

	CurrentPassword []T
	NewPassword     []T
	GenericPassword []T
}

func (b *Builder[T]) SetUsername(v T) { b.username, b.hasUsername = v, true }
func (b *Builder[T]) SetOtp(v T)      { b.otp, b.hasOtp = v, true }

// Build returns *Generic when generic password fields were set and
// *Classified otherwise.
func (b *Builder[T]) Build() (Scenario[T], error) {
	c := common[T]{
		username:     b.username,
		hasUsername:  b.hasUsername,
		fillUsername: b.hasUsername && b.FillUsername,
		otp:          b.otp,
		hasOtp:       b.hasOtp,
	}
	if len(b.GenericPassword) > 0 {
		if len(b.CurrentPassword) > 0 || len(b.NewPassword) > 0 {
			return nil, ErrMixedPasswords
		}
		return &Generic[T]{common: c, genericPassword: slices.Clone(b.GenericPassword)}, nil
	}
	return &Classified[T]{
		common:          c,
		currentPassword: slices.Clone(b.CurrentPassword),
		newPassword:     slices.Clone(b.NewPassword),
	}, nil
}

// Map converts every field of s with f, keeping the shape.
func Map[T, U comparable](s Scenario[T], f func(T) U) Scenario[U] {
	if s == nil {
		return nil
	}
	var b Builder[U]
	if u, ok := s.Username(); ok {
		b.SetUsername(f(u))
	}
	if o, ok := s.Otp(); ok {
		b.SetOtp(f(o))
	}
	b.FillUsername = s.FillUsername()
	switch v := s.(type) {
	case *Classified[T]:
		b.CurrentPassword = mapSlice(v.currentPassword, f)
		b.NewPassword = mapSlice(v.newPassword, f)
	case *Generic[T]:
		b.GenericPassword = mapSlice(v.genericPassword, f)
	}
	out, _ := b.Build()
	return out
}

func mapSlice[T, U any](in []T, f func(T) U) []U {
	if in == nil {
		return nil
	}
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

// IDs converts a field scenario into one addressed by platform ids.
func IDs(s Scenario[*model.FormField]) Scenario[model.AutofillID] {
	return Map(s, (*model.FormField).ID)
}
