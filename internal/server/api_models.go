package server

import (
	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/report"
)

// MatchRequest asks for the autofill scenario of a screen.
type MatchRequest struct {
	Package string            `json:"package"`
	Windows []*model.ViewNode `json:"windows"`
	Manual  bool              `json:"manual,omitempty"`
	// Action selects which fields the fill preview covers. Defaults to match.
	Action      string             `json:"action,omitempty"`
	Credentials *model.Credentials `json:"credentials,omitempty"`
	// Signatures are base64 DER signing certificates the device reported for
	// Package.
	Signatures []string `json:"signatures,omitempty"`
	// CustomSuffixes are added to the configured ones.
	CustomSuffixes []string `json:"custom_suffixes,omitempty"`
}

// HTMLMatchRequest asks for the autofill scenario of an HTML page.
type HTMLMatchRequest struct {
	URL         string             `json:"url"`
	HTML        string             `json:"html"`
	Manual      bool               `json:"manual,omitempty"`
	Action      string             `json:"action,omitempty"`
	Credentials *model.Credentials `json:"credentials,omitempty"`
}

// MatchResponse carries the report when the screen has something to fill or
// save.
type MatchResponse struct {
	Matched bool           `json:"matched"`
	Report  *report.Report `json:"report,omitempty"`
}

// SuffixResponse is the canonical domain of a host.
type SuffixResponse struct {
	Domain    string `json:"domain"`
	Canonical string `json:"canonical"`
}

type HealthResponse struct {
	Status          string `json:"status"`
	SuffixListReady bool   `json:"suffix_list_ready"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
