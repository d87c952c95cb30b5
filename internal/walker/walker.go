// Package walker flattens UI element trees into classified form fields.
package walker

import (
	"github.com/android-password-store/Android-Password-Store-sub001/internal/classifier"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
)

// Options controls a traversal.
type Options struct {
	// PassDownWebOrigins makes WebView nodes hand their origin to descendants
	// that do not declare one themselves.
	PassDownWebOrigins bool
}

// Result is the output of Walk.
type Result struct {
	// Fields holds the relevant fields in pre-order; Fields[i].Index() == i.
	Fields []*model.FormField
	// IgnoredIDs holds every visited node that is not a relevant field.
	IgnoredIDs []model.AutofillID
}

// Walk visits every node of every root exactly once, pre-order, roots in the
// given order.
func Walk(roots []*model.ViewNode, opts Options) Result {
	w := &walk{opts: opts}
	for _, r := range roots {
		w.visit(r, "")
	}
	return w.res
}

type walk struct {
	opts Options
	res  Result
}

func (w *walk) visit(n *model.ViewNode, inherited string) {
	if n == nil {
		return
	}
	origin := n.WebOrigin()
	if origin == "" && w.opts.PassDownWebOrigins {
		origin = inherited
	}

	profile := classifier.Classify(n)
	if profile.Relevant {
		attrs := profile.Attrs(n, len(w.res.Fields), origin)
		w.res.Fields = append(w.res.Fields, model.NewFormField(attrs))
	} else if n.ID != "" {
		w.res.IgnoredIDs = append(w.res.IgnoredIDs, n.ID)
	}

	down := ""
	if w.opts.PassDownWebOrigins && (n.IsWebView() || inherited != "") {
		down = origin
	}
	for _, c := range n.Children {
		w.visit(c, down)
	}
}
