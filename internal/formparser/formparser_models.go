package formparser

import (
	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/scenario"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/trust"
)

// Request is one autofill request: the window trees of a screen and who is
// asking.
type Request struct {
	Package        string
	Windows        []*model.ViewNode
	Manual         bool
	CustomSuffixes []string
}

// Result is a matched screen.
type Result struct {
	RequestID string
	Rule      string
	Scenario  scenario.Scenario[model.AutofillID]
	// Fields is the same scenario with the classified fields, for callers
	// that want to inspect certainties.
	Fields     scenario.Scenario[*model.FormField]
	Origin     model.FormOrigin
	IgnoredIDs []model.AutofillID
	// Browser is set when the requesting package passed the trust lookup.
	Browser   *trust.BrowserInfo
	SaveFlags trust.SaveFlags
}
