package model

// AutofillAction is what the user asked for when a dataset is filled.
type AutofillAction int

const (
	ActionMatch AutofillAction = iota
	ActionSearch
	ActionGenerate
	ActionFillOtpFromSms
)

func (a AutofillAction) String() string {
	switch a {
	case ActionMatch:
		return "match"
	case ActionSearch:
		return "search"
	case ActionGenerate:
		return "generate"
	case ActionFillOtpFromSms:
		return "fill_otp_from_sms"
	default:
		return "unknown"
	}
}

// ParseAutofillAction is the inverse of AutofillAction.String.
func ParseAutofillAction(s string) (AutofillAction, bool) {
	for _, a := range []AutofillAction{ActionMatch, ActionSearch, ActionGenerate, ActionFillOtpFromSms} {
		if a.String() == s {
			return a, true
		}
	}
	return ActionMatch, false
}

// Credentials are the decrypted values for one password entry.
type Credentials struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Otp      string `json:"otp,omitempty"`
}
