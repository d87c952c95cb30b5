package testutil

import "github.com/android-password-store/Android-Password-Store-sub001/internal/model"

// ─── View tree builders ───────────────────────────────────────────────

// Input returns a visible HTML <input> node. attrs are key/value pairs.
func Input(id string, attrs ...string) *model.ViewNode {
	m := make(map[string]string, len(attrs)/2)
	for i := 0; i+1 < len(attrs); i += 2 {
		m[attrs[i]] = attrs[i+1]
	}
	return &model.ViewNode{
		ID:           model.AutofillID(id),
		AutofillType: model.AutofillTypeText,
		Visible:      true,
		HTMLInfo:     &model.HTMLInfo{Tag: "input", Attributes: m},
	}
}

// EditText returns a visible native text field.
func EditText(id, idEntry string, inputType int, hints ...string) *model.ViewNode {
	return &model.ViewNode{
		ID:            model.AutofillID(id),
		ClassName:     "android.widget.EditText",
		IDEntry:       idEntry,
		AutofillHints: hints,
		AutofillType:  model.AutofillTypeText,
		InputType:     inputType,
		Visible:       true,
	}
}

// Container returns a visible layout node holding children.
func Container(id string, children ...*model.ViewNode) *model.ViewNode {
	return &model.ViewNode{
		ID:        model.AutofillID(id),
		ClassName: "android.widget.LinearLayout",
		Visible:   true,
		Children:  children,
	}
}

// WebView returns a WebView node declaring an https origin for domain.
func WebView(id, domain string, children ...*model.ViewNode) *model.ViewNode {
	return &model.ViewNode{
		ID:        model.AutofillID(id),
		ClassName: model.WebViewClassName,
		WebDomain: domain,
		WebScheme: "https",
		Visible:   true,
		Children:  children,
	}
}

// Focused marks n as focused and returns it.
func Focused(n *model.ViewNode) *model.ViewNode {
	n.Focused = true
	return n
}

// Hidden marks n as invisible and returns it.
func Hidden(n *model.ViewNode) *model.ViewNode {
	n.Visible = false
	return n
}

// OnDomain sets an https web domain on n and returns it.
func OnDomain(n *model.ViewNode, domain string) *model.ViewNode {
	n.WebDomain = domain
	n.WebScheme = "https"
	return n
}
