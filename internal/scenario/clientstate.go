package scenario

import (
	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
)

// Client state keys.
const (
	KeyUsernameID         = "usernameId"
	KeyFillUsername       = "fillUsername"
	KeyOtpID              = "otpId"
	KeyCurrentPasswordIDs = "currentPasswordIds"
	KeyNewPasswordIDs     = "newPasswordIds"
	KeyGenericPasswordIDs = "genericPasswordIds"
)

// ClientState is the flat form of a scenario handed across a process
// boundary and back. Values are string, bool or []string; after a JSON round
// trip lists arrive as []any, which FromClientState accepts too.
type ClientState map[string]any

// ToClientState flattens s. Classified scenarios carry the current and new
// password lists, generic ones only the generic list.
func ToClientState(s Scenario[model.AutofillID]) ClientState {
	if s == nil {
		return nil
	}
	cs := ClientState{KeyFillUsername: s.FillUsername()}
	if u, ok := s.Username(); ok {
		cs[KeyUsernameID] = string(u)
	}
	if o, ok := s.Otp(); ok {
		cs[KeyOtpID] = string(o)
	}
	switch v := s.(type) {
	case *Classified[model.AutofillID]:
		cs[KeyCurrentPasswordIDs] = idStrings(v.currentPassword)
		cs[KeyNewPasswordIDs] = idStrings(v.newPassword)
	case *Generic[model.AutofillID]:
		cs[KeyGenericPasswordIDs] = idStrings(v.genericPassword)
	}
	return cs
}

// FromClientState rebuilds a scenario. It returns nil when the state is
// malformed or mixes generic and classified password lists.
func FromClientState(cs ClientState) Scenario[model.AutofillID] {
	if cs == nil {
		return nil
	}
	var b Builder[model.AutofillID]

	if v, ok := cs[KeyUsernameID]; ok {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		b.SetUsername(model.AutofillID(s))
	}
	if v, ok := cs[KeyOtpID]; ok {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		b.SetOtp(model.AutofillID(s))
	}
	if v, ok := cs[KeyFillUsername]; ok {
		fill, ok := v.(bool)
		if !ok {
			return nil
		}
		b.FillUsername = fill
	}

	_, hasGeneric := cs[KeyGenericPasswordIDs]
	_, hasCurrent := cs[KeyCurrentPasswordIDs]
	_, hasNew := cs[KeyNewPasswordIDs]
	if hasGeneric && (hasCurrent || hasNew) {
		return nil
	}

	var ok bool
	if hasGeneric {
		if b.GenericPassword, ok = idList(cs[KeyGenericPasswordIDs]); !ok {
			return nil
		}
	} else {
		if b.CurrentPassword, ok = idList(cs[KeyCurrentPasswordIDs]); !ok {
			return nil
		}
		if b.NewPassword, ok = idList(cs[KeyNewPasswordIDs]); !ok {
			return nil
		}
	}
	s, err := b.Build()
	if err != nil {
		return nil
	}
	return s
}

func idStrings(ids []model.AutofillID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func idList(v any) ([]model.AutofillID, bool) {
	switch list := v.(type) {
	case nil:
		return nil, true
	case []string:
		out := make([]model.AutofillID, len(list))
		for i, s := range list {
			out[i] = model.AutofillID(s)
		}
		return out, true
	case []any:
		out := make([]model.AutofillID, len(list))
		for i, e := range list {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out[i] = model.AutofillID(s)
		}
		return out, true
	default:
		return nil, false
	}
}

// Placeholders used by FillValues when no credentials are given.
const (
	PlaceholderUsername = "USERNAME"
	PlaceholderPassword = "PASSWORD"
	PlaceholderOtp      = "OTP"
)

// FillValues maps every field that action fills to the value it receives.
// Fields whose credential is empty are left out. A nil creds yields
// placeholder values.
func FillValues(s Scenario[model.AutofillID], action model.AutofillAction, creds *model.Credentials) map[model.AutofillID]string {
	if s == nil {
		return nil
	}
	if creds == nil {
		creds = &model.Credentials{
			Username: PlaceholderUsername,
			Password: PlaceholderPassword,
			Otp:      PlaceholderOtp,
		}
	}
	username, hasUsername := s.Username()
	otp, hasOtp := s.Otp()

	out := make(map[model.AutofillID]string)
	for _, id := range s.FieldsToFillOn(action) {
		var value string
		switch {
		case hasUsername && id == username:
			value = creds.Username
		case hasOtp && id == otp:
			value = creds.Otp
		default:
			value = creds.Password
		}
		if value != "" {
			out[id] = value
		}
	}
	return out
}

// RecoverNodes resolves the ids of s against the current trees, as needed
// when a save request arrives with only the client state. It returns false if
// any id is no longer present.
func RecoverNodes(s Scenario[model.AutofillID], roots []*model.ViewNode) (Scenario[*model.ViewNode], bool) {
	if s == nil {
		return nil, false
	}
	missing := false
	find := func(id model.AutofillID) *model.ViewNode {
		for _, r := range roots {
			if n := r.Find(id); n != nil {
				return n
			}
		}
		missing = true
		return nil
	}
	out := Map(s, find)
	if missing {
		return nil, false
	}
	return out, true
}
