package classifier_test

import (
	"testing"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/classifier"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/testutil"
)

const (
	textPassword  = model.InputTypeClassText | model.InputTypeTextVariationPassword
	textEmail     = model.InputTypeClassText | model.InputTypeTextVariationEmailAddress
	numberPlain   = model.InputTypeClassNumber
	numberPasswrd = model.InputTypeClassNumber | model.InputTypeNumberVariationPassword
)

type levels struct {
	user, pass, otp model.CertaintyLevel
}

func TestClassify_Cascade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node *model.ViewNode
		want levels
	}{
		// password
		{"html password input", testutil.Input("p", "type", "password"), levels{pass: model.CertaintyLikely}},
		{"autocomplete current-password", testutil.Input("p", "type", "password", "autocomplete", "current-password"), levels{pass: model.CertaintyCertain}},
		{"autocomplete new-password", testutil.Input("p", "type", "password", "autocomplete", "section-a new-password"), levels{pass: model.CertaintyCertain}},
		{"native password hint", testutil.EditText("p", "pw", model.InputTypeClassText, model.HintPassword), levels{pass: model.CertaintyCertain}},
		{"native obscured input", testutil.EditText("p", "secret", textPassword), levels{pass: model.CertaintyLikely}},
		{"native number password", testutil.EditText("p", "pin", numberPasswrd), levels{pass: model.CertaintyLikely}},
		{"show-password toggle text field", testutil.Input("p", "type", "text", "id", "showPassword"), levels{pass: model.CertaintyPossible}},

		// username
		{"autocomplete username", testutil.Input("u", "type", "text", "autocomplete", "username"), levels{user: model.CertaintyCertain}},
		{"autocomplete email", testutil.Input("u", "type", "text", "autocomplete", "email"), levels{user: model.CertaintyLikely}},
		{"html email type", testutil.Input("u", "type", "email"), levels{user: model.CertaintyLikely}},
		{"native username hint", testutil.EditText("u", "x", model.InputTypeClassText, model.HintUsername), levels{user: model.CertaintyCertain}},
		{"native email keyboard", testutil.EditText("u", "x", textEmail), levels{user: model.CertaintyLikely}},
		{"keyword in id", testutil.Input("u", "id", "loginName"), levels{user: model.CertaintyPossible}},
		{"keyword in name", testutil.Input("u", "name", "user_id"), levels{user: model.CertaintyPossible}},
		{"plain text field", testutil.Input("u", "type", "text", "id", "firstname"), levels{}},

		// otp
		{"autocomplete one-time-code", testutil.Input("o", "type", "text", "autocomplete", "one-time-code"), levels{otp: model.CertaintyCertain}},
		{"native sms otp hint", testutil.EditText("o", "x", numberPlain, model.HintSmsOTP), levels{otp: model.CertaintyCertain}},
		{"numeric with otp length", testutil.Input("o", "type", "tel", "maxlength", "6"), levels{otp: model.CertaintyLikely}},
		{"numeric with otp keyword", testutil.EditText("o", "otpcode", numberPlain), levels{otp: model.CertaintyLikely}},
		{"otp keyword on text field", testutil.Input("o", "id", "verification"), levels{otp: model.CertaintyPossible}},
		{"exact code term", testutil.Input("o", "name", "code"), levels{otp: model.CertaintyPossible}},
		{"exact code term with long maxlength", testutil.Input("o", "name", "code", "maxlength", "20"), levels{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := classifier.Classify(tt.node)
			if !p.Relevant {
				t.Fatalf("expected relevant field")
			}
			got := levels{p.Username, p.Password, p.Otp}
			if got != tt.want {
				t.Errorf("levels = {user:%s pass:%s otp:%s}, want {user:%s pass:%s otp:%s}",
					got.user, got.pass, got.otp, tt.want.user, tt.want.pass, tt.want.otp)
			}
		})
	}
}

func TestClassify_Relevance(t *testing.T) {
	t.Parallel()

	button := testutil.Input("b", "type", "submit")
	label := &model.ViewNode{ID: "l", ClassName: "android.widget.TextView", Visible: true, AutofillType: model.AutofillTypeText}
	card := testutil.EditText("c", "card", model.InputTypeClassNumber, "creditCardNumber")
	hidden := testutil.Hidden(testutil.Input("h", "type", "text"))
	toggle := testutil.Input("t", "type", "text")
	toggle.AutofillType = model.AutofillTypeToggle
	noType := testutil.Input("n")

	tests := []struct {
		name string
		node *model.ViewNode
		want bool
	}{
		{"submit button", button, false},
		{"label", label, false},
		{"unsupported autofill hint", card, false},
		{"hidden text input", hidden, false},
		{"toggle autofill type", toggle, false},
		{"input without type", noType, true},
		{"nil node", nil, false},
	}
	for _, tt := range tests {
		if got := classifier.Classify(tt.node).Relevant; got != tt.want {
			t.Errorf("%s: Relevant = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestClassify_ExcludedTermsKeepRelevance(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"url_bar", "site-search", "captcha_user", "postalcode"} {
		p := classifier.Classify(testutil.Input("x", "type", "text", "id", id, "autocomplete", "username"))
		if !p.Relevant {
			t.Errorf("%s: excluded field should stay relevant for adjacency", id)
		}
		if p.Username != model.CertaintyNone || p.Password != model.CertaintyNone || p.Otp != model.CertaintyNone {
			t.Errorf("%s: expected no role, got user=%s pass=%s otp=%s", id, p.Username, p.Password, p.Otp)
		}
	}
}

func TestClassify_TwoStepHiddenFields(t *testing.T) {
	t.Parallel()

	user := classifier.Classify(testutil.Hidden(testutil.Input("u", "type", "email", "autocomplete", "username")))
	if !user.Relevant || !user.CouldBeTwoStepHiddenUsername {
		t.Fatalf("hidden username should be kept as two-step field: %+v", user)
	}
	if user.Username != model.CertaintyCertain {
		t.Errorf("Username = %s, want Certain", user.Username)
	}

	pass := classifier.Classify(testutil.Hidden(testutil.Input("p", "type", "password")))
	if !pass.Relevant || !pass.CouldBeTwoStepHiddenPassword {
		t.Fatalf("hidden password should be kept as two-step field: %+v", pass)
	}

	newPass := classifier.Classify(testutil.Hidden(testutil.Input("p", "type", "password", "autocomplete", "new-password")))
	if newPass.Relevant {
		t.Errorf("hidden new-password field should be ignored")
	}
}

func TestClassify_StrongPasswordSuppressesOtherRoles(t *testing.T) {
	t.Parallel()

	p := classifier.Classify(testutil.Input("p", "type", "password", "id", "user_pass", "autocomplete", "one-time-code"))
	if p.Password != model.CertaintyLikely {
		t.Fatalf("Password = %s, want Likely", p.Password)
	}
	if p.Username != model.CertaintyNone || p.Otp != model.CertaintyNone {
		t.Errorf("expected no username/otp for an obscured field, got user=%s otp=%s", p.Username, p.Otp)
	}
	if !p.HasHintOtp {
		t.Errorf("hint flags are recorded regardless of the cascade")
	}
}

func TestProfile_Attrs(t *testing.T) {
	t.Parallel()

	n := testutil.Focused(testutil.Input("p", "type", "password", "autocomplete", "current-password"))
	f := model.NewFormField(classifier.Classify(n).Attrs(n, 4, "https://example.org"))
	if f.ID() != "p" || f.Index() != 4 || !f.Focused() || !f.Visible() {
		t.Errorf("unexpected field %s", f)
	}
	if f.WebOrigin() != "https://example.org" {
		t.Errorf("WebOrigin = %q", f.WebOrigin())
	}
	if !f.HasAutocompleteCurrentPassword() || !f.HasHintPassword() {
		t.Errorf("expected current-password flags on %s", f)
	}
}
