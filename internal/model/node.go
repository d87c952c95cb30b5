package model

import "strings"

// AutofillID is the opaque platform handle of a UI element. It is the only
// thing handed back to the platform when values are written into a screen.
type AutofillID string

// AutofillType mirrors the platform's autofill value type of a view.
type AutofillType int

const (
	AutofillTypeNone AutofillType = iota
	AutofillTypeText
	AutofillTypeToggle
	AutofillTypeList
	AutofillTypeDate
)

// Input type bit layout (class in the low nibble, variation above it).
const (
	InputTypeMaskClass     = 0x0000000f
	InputTypeMaskVariation = 0x00000ff0

	InputTypeClassText     = 0x00000001
	InputTypeClassNumber   = 0x00000002
	InputTypeClassPhone    = 0x00000003
	InputTypeClassDatetime = 0x00000004

	InputTypeTextVariationEmailAddress    = 0x00000020
	InputTypeTextVariationPassword        = 0x00000080
	InputTypeTextVariationVisiblePassword = 0x00000090
	InputTypeTextVariationWebEmailAddress = 0x000000d0
	InputTypeTextVariationWebPassword     = 0x000000e0

	InputTypeNumberVariationPassword = 0x00000010
)

// Platform autofill hints understood by the classifier.
const (
	HintUsername     = "username"
	HintNewUsername  = "newUsername"
	HintPassword     = "password"
	HintNewPassword  = "newPassword"
	HintSmsOTP       = "smsOTPCode"
	HintEmailAddress = "emailAddress"
	HintPhone        = "phone"
	HintPhoneNumber  = "phoneNumber"
)

// WebViewClassName is the class of nodes that render embedded web content.
const WebViewClassName = "android.webkit.WebView"

// HTMLInfo carries the tag and attributes of a node rendered from HTML.
type HTMLInfo struct {
	Tag        string            `json:"tag"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Attr returns the lower-cased value of a lower-cased attribute name.
func (h *HTMLInfo) Attr(name string) (string, bool) {
	if h == nil {
		return "", false
	}
	for k, v := range h.Attributes {
		if strings.EqualFold(k, name) {
			return strings.ToLower(v), true
		}
	}
	return "", false
}

// ViewNode is one element of a UI tree snapshot as delivered by the platform.
// It is input only; the engine never mutates it.
type ViewNode struct {
	ID            AutofillID   `json:"id"`
	ClassName     string       `json:"class_name,omitempty"`
	IDEntry       string       `json:"id_entry,omitempty"`
	Hint          string       `json:"hint,omitempty"`
	AutofillHints []string     `json:"autofill_hints,omitempty"`
	AutofillType  AutofillType `json:"autofill_type,omitempty"`
	InputType     int          `json:"input_type,omitempty"`
	Visible       bool         `json:"visible"`
	Focused       bool         `json:"focused,omitempty"`
	WebDomain     string       `json:"web_domain,omitempty"`
	WebScheme     string       `json:"web_scheme,omitempty"`
	HTMLInfo      *HTMLInfo    `json:"html_info,omitempty"`
	Children      []*ViewNode  `json:"children,omitempty"`
}

// WebOrigin returns "scheme://domain" for nodes that declare a web domain,
// or "" otherwise. The scheme defaults to https.
func (n *ViewNode) WebOrigin() string {
	if n == nil || n.WebDomain == "" {
		return ""
	}
	scheme := n.WebScheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + n.WebDomain
}

// IsWebView reports whether the node renders embedded web content.
func (n *ViewNode) IsWebView() bool {
	return n != nil && n.ClassName == WebViewClassName
}

// Find returns the first node in pre-order whose ID equals id.
func (n *ViewNode) Find(id AutofillID) *ViewNode {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}
