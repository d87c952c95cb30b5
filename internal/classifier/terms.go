package classifier

import "github.com/android-password-store/Android-Password-Store-sub001/internal/model"

var textFieldClassNames = []string{
	"android.widget.EditText",
	"android.widget.AutoCompleteTextView",
	"androidx.appcompat.widget.AppCompatEditText",
	"android.support.v7.widget.AppCompatEditText",
	"com.google.android.material.textfield.TextInputEditText",
}

var (
	hintsUsername    = []string{model.HintUsername, model.HintNewUsername}
	hintsNewPassword = []string{model.HintNewPassword}
	hintsPassword    = []string{model.HintPassword, model.HintNewPassword}
	hintsOtp         = []string{model.HintSmsOTP}
	hintsEmail       = []string{model.HintEmailAddress}
	hintsFillable    = concat(hintsUsername, hintsPassword, hintsOtp,
		[]string{model.HintEmailAddress, model.HintPhone, model.HintPhoneNumber})
)

var (
	htmlTypesUsername = []string{"email", "tel", "text"}
	htmlTypesPassword = []string{"password"}
	htmlTypesOtp      = []string{"tel", "text", "number"}
	htmlTypesFillable = concat(htmlTypesUsername, htmlTypesPassword, htmlTypesOtp)
)

// Terms that mark browser chrome or unrelated inputs. Matching fields stay in
// the traversal (they count for adjacency) but never get a role.
var excludedTerms = []string{
	"url_bar",                // Chrome/Edge/Firefox address bar
	"url_field",              // Opera address bar
	"location_bar_edit_text", // Samsung address bar
	"search",
	"find",
	"captcha",
	"postal", // postal codes look like OTPs
}

var (
	passwordTerms = []string{"pass", "pswd", "pwd"}
	usernameTerms = []string{"alias", "e-mail", "email", "login", "user", "identifier"}
	otpTerms      = []string{"einmal", "otp", "challenge", "verification"}
	otpExactTerms = []string{"code", "token"}
)

func concat(lists ...[]string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, l := range lists {
		for _, s := range l {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
