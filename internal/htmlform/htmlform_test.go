package htmlform_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/htmlform"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/testutil"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/walker"
)

const loginPage = `<!doctype html>
<html><head><title>Sign in</title><script>var x = "<input>";</script></head>
<body>
  <div class="card">
    <form action="/login" method="post">
      <input type="hidden" name="csrf" value="t0k3n">
      <label for="email">Email address</label>
      <input id="email" type="email" autocomplete="username" autofocus>
      <input id="password" type="password" autocomplete="current-password">
      <input type="checkbox" name="remember">
      <button type="submit">Sign in</button>
    </form>
    <div style="display: none"><input id="trap" type="text" name="user"></div>
  </div>
</body></html>`

func collect(n *model.ViewNode, out map[string]*model.ViewNode) {
	if n.HTMLInfo != nil {
		if id, ok := n.HTMLInfo.Attr("id"); ok {
			out[id] = n
		}
	}
	for _, c := range n.Children {
		collect(c, out)
	}
}

func TestBuildTree_LoginPage(t *testing.T) {
	t.Parallel()

	root, err := htmlform.BuildTree(context.Background(), "https://accounts.example.com/signin", []byte(loginPage), htmlform.Options{})
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if !root.IsWebView() || root.WebOrigin() != "https://accounts.example.com" {
		t.Fatalf("unexpected root %+v", root)
	}

	byID := map[string]*model.ViewNode{}
	collect(root, byID)

	email := byID["email"]
	if email == nil {
		t.Fatalf("email input missing")
	}
	if !email.Focused || !email.Visible || email.Hint != "Email address" {
		t.Errorf("email node = %+v", email)
	}
	if byID["password"].Focused {
		t.Errorf("only the autofocus input should be focused")
	}
	if trap := byID["trap"]; trap == nil || trap.Visible {
		t.Errorf("input inside display:none must be invisible: %+v", trap)
	}

	res := walker.Walk([]*model.ViewNode{root}, walker.Options{PassDownWebOrigins: true})
	var got []string
	for _, f := range res.Fields {
		got = append(got, string(f.ID()))
		if f.WebOrigin() != "https://accounts.example.com" {
			t.Errorf("field %s origin = %q", f.ID(), f.WebOrigin())
		}
	}
	if diff := cmp.Diff([]string{"5:input#email", "6:input#password"}, got); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTree_Frames(t *testing.T) {
	t.Parallel()

	page := `<body>
	  <iframe src="https://login.partner.example/embed"></iframe>
	  <iframe srcdoc="&lt;input id=&quot;inner&quot; type=&quot;password&quot;&gt;"></iframe>
	  <iframe src="javascript:void(0)"></iframe>
	</body>`
	var loaded []string
	loader := func(_ context.Context, u string) ([]byte, error) {
		loaded = append(loaded, u)
		return []byte(`<body><input id="frame-pass" type="password"></body>`), nil
	}

	root, err := htmlform.BuildTree(context.Background(), "https://www.example.com/", []byte(page), htmlform.Options{LoadFrame: loader})
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if len(root.Children) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(root.Children))
	}
	remote, inline, script := root.Children[0], root.Children[1], root.Children[2]

	if !remote.IsWebView() || remote.WebOrigin() != "https://login.partner.example" {
		t.Errorf("remote frame = %+v", remote)
	}
	if diff := cmp.Diff([]string{"https://login.partner.example/embed"}, loaded); diff != "" {
		t.Errorf("loaded mismatch (-want +got):\n%s", diff)
	}
	if len(remote.Children) != 1 {
		t.Errorf("remote frame should contain the loaded input")
	}
	if inline.WebDomain != "" || len(inline.Children) != 1 {
		t.Errorf("srcdoc frame = %+v", inline)
	}
	if script.WebDomain != "" || len(script.Children) != 0 {
		t.Errorf("javascript frame = %+v", script)
	}

	res := walker.Walk([]*model.ViewNode{root}, walker.Options{PassDownWebOrigins: true})
	origins := map[string]string{}
	for _, f := range res.Fields {
		origins[string(f.ID())] = f.WebOrigin()
	}
	want := map[string]string{
		"2:input#frame-pass": "https://login.partner.example",
		"4:input#inner":      "https://www.example.com",
	}
	if diff := cmp.Diff(want, origins); diff != "" {
		t.Errorf("origins mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTree_FrameDepthAndErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	loader := func(context.Context, string) ([]byte, error) {
		calls++
		return []byte(`<body><iframe src="https://deeper.example/"></iframe></body>`), nil
	}
	_, err := htmlform.BuildTree(context.Background(), "https://a.example/",
		[]byte(`<body><iframe src="https://b.example/"></iframe></body>`),
		htmlform.Options{LoadFrame: loader, MaxFrameDepth: 2})
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if calls != 2 {
		t.Errorf("loader calls = %d, want 2", calls)
	}

	failing := func(context.Context, string) ([]byte, error) { return nil, errors.New("offline") }
	logger := &testutil.DummyLogger{}
	root, err := htmlform.BuildTree(context.Background(), "https://a.example/",
		[]byte(`<body><iframe src="https://b.example/"></iframe></body>`),
		htmlform.Options{LoadFrame: failing, Logger: logger})
	if err != nil {
		t.Fatalf("frame errors must not fail the page: %v", err)
	}
	if root.Children[0].WebOrigin() != "https://b.example" {
		t.Errorf("frame origin should be kept without content")
	}
	if len(logger.Debugs) != 1 || logger.Debugs[0] != "skipping frame content" {
		t.Errorf("debug entries = %v", logger.Debugs)
	}
	var logged string
	for _, f := range logger.Fields {
		if f.Key == "error" {
			logged, _ = f.Value.(string)
		}
	}
	if logged != "offline" {
		t.Errorf("logged error = %q, want offline", logged)
	}

	for _, bad := range []string{"", "/relative", "ftp://a.example/", "https://"} {
		if _, err := htmlform.BuildTree(context.Background(), bad, nil, htmlform.Options{}); !errors.Is(err, htmlform.ErrInvalidPageURL) {
			t.Errorf("BuildTree(%q) error = %v", bad, err)
		}
	}
}
