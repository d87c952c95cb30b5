// Package report renders a match result for people and for API clients.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/formparser"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/scenario"
)

// Roles as reported per field.
const (
	RoleUsername        = "username"
	RoleOtp             = "otp"
	RoleCurrentPassword = "current_password"
	RoleNewPassword     = "new_password"
	RoleGenericPassword = "generic_password"
)

type Field struct {
	ID        model.AutofillID `json:"id"`
	Index     int              `json:"index"`
	Role      string           `json:"role"`
	Username  string           `json:"username_certainty"`
	Password  string           `json:"password_certainty"`
	Otp       string           `json:"otp_certainty"`
	Focused   bool             `json:"focused,omitempty"`
	Visible   bool             `json:"visible"`
	WebOrigin string           `json:"web_origin,omitempty"`
}

type Browser struct {
	Package   string `json:"package"`
	Method    string `json:"method"`
	SaveFlags string `json:"save_flags,omitempty"`
}

// Report is a matched screen.
type Report struct {
	Source      string                      `json:"source,omitempty"`
	RequestID   string                      `json:"request_id"`
	Rule        string                      `json:"rule"`
	Action      string                      `json:"action"`
	Origin      map[string]string           `json:"origin"`
	ClientState scenario.ClientState        `json:"client_state"`
	Fill        map[model.AutofillID]string `json:"fill"`
	Save        []model.AutofillID          `json:"save"`
	Fields      []Field                     `json:"fields"`
	IgnoredIDs  []model.AutofillID          `json:"ignored_ids,omitempty"`
	Browser     *Browser                    `json:"browser,omitempty"`
}

// New builds a report for res. Fill values are placeholders when creds is nil.
func New(res *formparser.Result, action model.AutofillAction, creds *model.Credentials) *Report {
	if res == nil {
		return nil
	}
	r := &Report{
		RequestID:   res.RequestID,
		Rule:        res.Rule,
		Action:      action.String(),
		Origin:      model.FormOriginToBundle(res.Origin),
		ClientState: scenario.ToClientState(res.Scenario),
		Fill:        scenario.FillValues(res.Scenario, action, creds),
		Save:        res.Scenario.FieldsToSave(),
		IgnoredIDs:  res.IgnoredIDs,
	}
	roles := Roles(res.Scenario)
	for _, f := range res.Fields.AllFields() {
		r.Fields = append(r.Fields, Field{
			ID:        f.ID(),
			Index:     f.Index(),
			Role:      roles[f.ID()],
			Username:  f.UsernameCertainty().String(),
			Password:  f.PasswordCertainty().String(),
			Otp:       f.OtpCertainty().String(),
			Focused:   f.Focused(),
			Visible:   f.Visible(),
			WebOrigin: f.WebOrigin(),
		})
	}
	sort.Slice(r.Fields, func(i, j int) bool { return r.Fields[i].Index < r.Fields[j].Index })
	if res.Browser != nil {
		r.Browser = &Browser{
			Package:   res.Browser.Package,
			Method:    res.Browser.Method.String(),
			SaveFlags: res.Browser.SaveFlags.String(),
		}
	}
	return r
}

// Roles maps every field of s to the role it plays.
func Roles(s scenario.Scenario[model.AutofillID]) map[model.AutofillID]string {
	out := map[model.AutofillID]string{}
	if s == nil {
		return out
	}
	if u, ok := s.Username(); ok {
		out[u] = RoleUsername
	}
	if o, ok := s.Otp(); ok {
		out[o] = RoleOtp
	}
	switch v := s.(type) {
	case *scenario.Classified[model.AutofillID]:
		for _, id := range v.CurrentPassword() {
			out[id] = RoleCurrentPassword
		}
		for _, id := range v.NewPassword() {
			out[id] = RoleNewPassword
		}
	case *scenario.Generic[model.AutofillID]:
		for _, id := range v.GenericPassword() {
			out[id] = RoleGenericPassword
		}
	}
	return out
}

// OriginIdentifier is the identifier credentials are looked up under.
func (r *Report) OriginIdentifier() string {
	if o := model.FormOriginFromBundle(r.Origin); o != nil {
		return o.Identifier()
	}
	return ""
}

// WriteText writes a human readable rendering of r.
func WriteText(w io.Writer, r *Report) error {
	if r == nil {
		_, err := fmt.Fprintln(w, "no fillable form")
		return err
	}
	var b strings.Builder
	if r.Source != "" {
		fmt.Fprintf(&b, "source:  %s\n", r.Source)
	}
	fmt.Fprintf(&b, "rule:    %s\n", r.Rule)
	fmt.Fprintf(&b, "origin:  %s\n", r.OriginIdentifier())
	if r.Browser != nil {
		fmt.Fprintf(&b, "browser: %s (%s)\n", r.Browser.Package, r.Browser.Method)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tID\tROLE\tUSER\tPASS\tOTP\tFILL")
	for _, f := range r.Fields {
		focus := ""
		if f.Focused {
			focus = "*"
		}
		fmt.Fprintf(tw, "%d\t%s%s\t%s\t%s\t%s\t%s\t%s\n",
			f.Index, f.ID, focus, f.Role, f.Username, f.Password, f.Otp, r.Fill[f.ID])
	}
	return tw.Flush()
}
