// Package htmlform renders an HTML document into the view tree shape the
// autofill engine consumes, so that real pages can be matched without a
// device.
package htmlform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
)

// FrameLoader fetches the document of an iframe.
type FrameLoader func(ctx context.Context, frameURL string) ([]byte, error)

// Options controls BuildTree.
type Options struct {
	// LoadFrame is called for iframes with an http(s) src. Without it such
	// frames become empty WebView nodes.
	LoadFrame FrameLoader
	// MaxFrameDepth limits iframe nesting. Zero means 3.
	MaxFrameDepth int
	// Logger receives frames that could not be loaded or parsed. Nil
	// discards them.
	Logger logging.Logger
}

var ErrInvalidPageURL = errors.New("htmlform: page url must be absolute http(s)")

var skippedTags = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true, "template": true, "svg": true,
}

// BuildTree parses body, served from pageURL, into a tree rooted at a WebView
// node carrying the page origin.
func BuildTree(ctx context.Context, pageURL string, body []byte, opts Options) (*model.ViewNode, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, ErrInvalidPageURL
	}
	if opts.MaxFrameDepth == 0 {
		opts.MaxFrameDepth = 3
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	b := &builder{ctx: ctx, opts: opts}
	root := &model.ViewNode{
		ID:        "page",
		ClassName: model.WebViewClassName,
		WebDomain: u.Hostname(),
		WebScheme: u.Scheme,
		Visible:   true,
	}
	if err := b.document(root, u, body, 0); err != nil {
		return nil, err
	}
	return root, nil
}

type builder struct {
	ctx     context.Context
	opts    Options
	counter int
	focused bool
}

func (b *builder) document(parent *model.ViewNode, base *url.URL, body []byte, depth int) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}
	b.children(parent, doc.Find("body"), doc, base, depth, true)
	return nil
}

func (b *builder) children(parent *model.ViewNode, sel *goquery.Selection, doc *goquery.Document, base *url.URL, depth int, visible bool) {
	sel.Children().Each(func(_ int, child *goquery.Selection) {
		if n := b.element(child, doc, base, depth, visible); n != nil {
			parent.Children = append(parent.Children, n)
		}
	})
}

func (b *builder) element(sel *goquery.Selection, doc *goquery.Document, base *url.URL, depth int, parentVisible bool) *model.ViewNode {
	tag := goquery.NodeName(sel)
	if skippedTags[tag] {
		return nil
	}
	b.counter++
	visible := parentVisible && isVisible(sel)

	n := &model.ViewNode{
		ID:       model.AutofillID(nodeID(b.counter, tag, getAttr(sel, "id"))),
		Visible:  visible,
		HTMLInfo: &model.HTMLInfo{Tag: tag, Attributes: attributes(sel)},
	}

	switch tag {
	case "input":
		n.AutofillType = model.AutofillTypeText
		switch strings.ToLower(getAttr(sel, "type")) {
		case "checkbox", "radio":
			n.AutofillType = model.AutofillTypeToggle
		case "hidden":
			n.Visible = false
		}
		n.Hint = hint(sel, doc)
		if _, ok := sel.Attr("autofocus"); ok && visible && !b.focused {
			n.Focused = true
			b.focused = true
		}
	case "textarea":
		n.AutofillType = model.AutofillTypeText
	case "select":
		n.AutofillType = model.AutofillTypeList
	case "iframe":
		b.frame(n, sel, base, depth)
		return n
	}
	b.children(n, sel, doc, base, depth, visible)
	return n
}

func (b *builder) frame(n *model.ViewNode, sel *goquery.Selection, base *url.URL, depth int) {
	n.ClassName = model.WebViewClassName
	n.HTMLInfo = nil
	if depth+1 > b.opts.MaxFrameDepth {
		return
	}

	if srcdoc, ok := sel.Attr("srcdoc"); ok {
		// srcdoc frames share the embedding document's origin.
		if err := b.document(n, base, []byte(srcdoc), depth+1); err != nil {
			b.skipFrame(n, "srcdoc", err)
		}
		return
	}
	src := getAttr(sel, "src")
	if src == "" {
		return
	}
	ref, err := base.Parse(src)
	if err != nil || (ref.Scheme != "http" && ref.Scheme != "https") {
		return
	}
	n.WebDomain = ref.Hostname()
	n.WebScheme = ref.Scheme
	if b.opts.LoadFrame == nil {
		return
	}
	body, err := b.opts.LoadFrame(b.ctx, ref.String())
	if err != nil {
		b.skipFrame(n, ref.String(), err)
		return
	}
	if err := b.document(n, ref, body, depth+1); err != nil {
		b.skipFrame(n, ref.String(), err)
	}
}

// skipFrame leaves n as an empty WebView node.
func (b *builder) skipFrame(n *model.ViewNode, src string, err error) {
	b.opts.Logger.Debug("skipping frame content",
		logging.Field{Key: "node", Value: n.ID},
		logging.Field{Key: "src", Value: src},
		logging.Field{Key: "error", Value: err.Error()})
}

func nodeID(counter int, tag, id string) string {
	out := strconv.Itoa(counter) + ":" + tag
	if id != "" {
		out += "#" + id
	}
	return out
}

func attributes(sel *goquery.Selection) map[string]string {
	if len(sel.Nodes) == 0 || len(sel.Nodes[0].Attr) == 0 {
		return nil
	}
	out := make(map[string]string, len(sel.Nodes[0].Attr))
	for _, a := range sel.Nodes[0].Attr {
		out[strings.ToLower(a.Key)] = a.Val
	}
	return out
}

func isVisible(sel *goquery.Selection) bool {
	if _, hidden := sel.Attr("hidden"); hidden {
		return false
	}
	style := strings.ToLower(strings.ReplaceAll(getAttr(sel, "style"), " ", ""))
	return !strings.Contains(style, "display:none") && !strings.Contains(style, "visibility:hidden")
}

// hint is what a user sees describing the field: placeholder, aria-label or
// the text of its label.
func hint(sel *goquery.Selection, doc *goquery.Document) string {
	if p := getAttr(sel, "placeholder"); p != "" {
		return p
	}
	if a := getAttr(sel, "aria-label"); a != "" {
		return a
	}
	if id := getAttr(sel, "id"); id != "" {
		var text string
		doc.Find("label").EachWithBreak(func(_ int, l *goquery.Selection) bool {
			if getAttr(l, "for") == id {
				text = strings.TrimSpace(l.Text())
				return false
			}
			return true
		})
		if text != "" {
			return text
		}
	}
	if l := sel.Closest("label"); l.Length() > 0 {
		return strings.TrimSpace(l.Text())
	}
	return ""
}

func getAttr(sel *goquery.Selection, name string) string {
	val, exists := sel.Attr(name)
	if exists {
		return strings.TrimSpace(val)
	}
	return ""
}
