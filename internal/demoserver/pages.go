package demoserver

// PageVersion is one rendering of a fixture page. HTML is an html/template
// executed with pageData.
type PageVersion struct {
	HTML    string
	Headers map[string]string
}

// PageDefinition holds all versions of a single fixture page.
type PageDefinition struct {
	Path        string
	Description string
	// Fillable reports whether the page carries a form worth filling.
	Fillable bool
	Versions map[int]PageVersion
}

type pageData struct {
	// FrameOrigin is a scheme://host:port that differs from the page's own
	// origin, used for cross-origin iframes.
	FrameOrigin string
}

// GetAllPages returns all fixture page definitions.
func GetAllPages() []PageDefinition {
	return []PageDefinition{
		loginPage(),
		signupPage(),
		changePasswordPage(),
		twoStepUsernamePage(),
		twoStepPasswordPage(),
		otpPage(),
		embeddedLoginPage(),
		frameLoginPage(),
		searchPage(),
	}
}

const pageHead = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Autofill fixtures</title></head>
<body>
`

const pageFoot = `
</body>
</html>
`

func page(body string) PageVersion {
	return PageVersion{
		HTML:    pageHead + body + pageFoot,
		Headers: map[string]string{"Content-Type": "text/html; charset=utf-8"},
	}
}

// Version 1 relies on ids and labels only, version 2 adds autocomplete
// attributes.
func loginPage() PageDefinition {
	return PageDefinition{
		Path:        "/login",
		Description: "Username and password sign-in form",
		Fillable:    true,
		Versions: map[int]PageVersion{
			1: page(`<form action="/session" method="post">
  <label for="user">Email</label>
  <input id="user" name="user" type="email">
  <label for="pass">Password</label>
  <input id="pass" name="pass" type="password" autofocus>
  <button type="submit">Sign in</button>
</form>`),
			2: page(`<form action="/session" method="post">
  <input id="user" name="user" type="email" autocomplete="username">
  <input id="pass" name="pass" type="password" autocomplete="current-password" autofocus>
  <input type="hidden" name="csrf" value="token">
  <button type="submit">Sign in</button>
</form>`),
		},
	}
}

func signupPage() PageDefinition {
	return PageDefinition{
		Path:        "/signup",
		Description: "Registration form with a confirmed new password",
		Fillable:    true,
		Versions: map[int]PageVersion{
			1: page(`<form action="/account" method="post">
  <input id="email" name="email" type="email" autocomplete="username">
  <input id="new" name="new" type="password" autocomplete="new-password" autofocus>
  <input id="confirm" name="confirm" type="password" autocomplete="new-password">
  <button type="submit">Create account</button>
</form>`),
		},
	}
}

func changePasswordPage() PageDefinition {
	return PageDefinition{
		Path:        "/change-password",
		Description: "Current password followed by a new password and its confirmation",
		Fillable:    true,
		Versions: map[int]PageVersion{
			1: page(`<form action="/password" method="post">
  <input id="current" name="current" type="password" autocomplete="current-password" autofocus>
  <input id="new" name="new" type="password" autocomplete="new-password">
  <input id="confirm" name="confirm" type="password" autocomplete="new-password">
  <button type="submit">Change password</button>
</form>`),
		},
	}
}

func twoStepUsernamePage() PageDefinition {
	return PageDefinition{
		Path:        "/two-step/username",
		Description: "First step of a split sign-in: username only",
		Fillable:    true,
		Versions: map[int]PageVersion{
			1: page(`<form action="/two-step/password" method="get">
  <input id="identifier" name="identifier" type="email" autocomplete="username" autofocus>
  <button type="submit">Next</button>
</form>`),
		},
	}
}

func twoStepPasswordPage() PageDefinition {
	return PageDefinition{
		Path:        "/two-step/password",
		Description: "Second step of a split sign-in: password only",
		Fillable:    true,
		Versions: map[int]PageVersion{
			1: page(`<form action="/session" method="post">
  <input id="pass" name="pass" type="password" autocomplete="current-password" autofocus>
  <button type="submit">Sign in</button>
</form>`),
		},
	}
}

func otpPage() PageDefinition {
	return PageDefinition{
		Path:        "/otp",
		Description: "One-time code prompt",
		Fillable:    true,
		Versions: map[int]PageVersion{
			1: page(`<form action="/verify" method="post">
  <input id="code" name="code" inputmode="numeric" autocomplete="one-time-code" autofocus>
  <button type="submit">Verify</button>
</form>`),
		},
	}
}

func embeddedLoginPage() PageDefinition {
	return PageDefinition{
		Path:        "/embedded",
		Description: "Sign-in form served from another origin inside an iframe",
		Fillable:    true,
		Versions: map[int]PageVersion{
			1: page(`<h1>Partner portal</h1>
<iframe src="{{.FrameOrigin}}/frame/login" width="400" height="300"></iframe>`),
		},
	}
}

func frameLoginPage() PageDefinition {
	return PageDefinition{
		Path:        "/frame/login",
		Description: "Framed sign-in document embedded by /embedded",
		Fillable:    true,
		Versions: map[int]PageVersion{
			1: page(`<form action="/session" method="post">
  <input id="user" name="user" type="email" autocomplete="username">
  <input id="pass" name="pass" type="password" autocomplete="current-password" autofocus>
</form>`),
		},
	}
}

func searchPage() PageDefinition {
	return PageDefinition{
		Path:        "/search",
		Description: "Search box without any credential field",
		Versions: map[int]PageVersion{
			1: page(`<form action="/search" method="get">
  <input id="q" name="q" type="search" placeholder="Search" autofocus>
</form>`),
		},
	}
}
