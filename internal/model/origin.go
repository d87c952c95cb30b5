package model

// Keys used when a FormOrigin crosses a process boundary.
const (
	BundleKeyWebIdentifier = "webIdentifier"
	BundleKeyAppIdentifier = "appIdentifier"
)

// FormOrigin is the trust boundary a scenario belongs to: either a native app
// package or a canonical web domain. Implementations are AppOrigin and
// WebOrigin only.
type FormOrigin interface {
	Identifier() string
	isFormOrigin()
}

// AppOrigin identifies a native app by its package identifier.
type AppOrigin struct {
	ID string
}

// WebOrigin identifies a site by its canonical registrable domain.
type WebOrigin struct {
	ID string
}

func (o AppOrigin) Identifier() string { return o.ID }
func (o WebOrigin) Identifier() string { return o.ID }

func (AppOrigin) isFormOrigin() {}
func (WebOrigin) isFormOrigin() {}

// FormOriginToBundle flattens o into exactly one of the two identifier keys.
func FormOriginToBundle(o FormOrigin) map[string]string {
	switch v := o.(type) {
	case WebOrigin:
		return map[string]string{BundleKeyWebIdentifier: v.ID}
	case AppOrigin:
		return map[string]string{BundleKeyAppIdentifier: v.ID}
	default:
		return nil
	}
}

// FormOriginFromBundle is the inverse of FormOriginToBundle. The web key wins
// if both are present; nil is returned if neither is.
func FormOriginFromBundle(bundle map[string]string) FormOrigin {
	if id, ok := bundle[BundleKeyWebIdentifier]; ok && id != "" {
		return WebOrigin{ID: id}
	}
	if id, ok := bundle[BundleKeyAppIdentifier]; ok && id != "" {
		return AppOrigin{ID: id}
	}
	return nil
}
