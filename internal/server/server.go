// Package server exposes the matching engine over HTTP.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/formparser"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/htmlform"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/report"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/trust"
)

const requestIDHeader = "X-Request-ID"

var (
	ErrNilParser   = errors.New("server: nil parser")
	ErrNilSuffixes = errors.New("server: nil suffix resolver")
)

// Parser is satisfied by *formparser.Parser.
type Parser interface {
	Parse(ctx context.Context, req formparser.Request) (*formparser.Result, error)
}

// SuffixResolver is satisfied by *suffix.Service.
type SuffixResolver interface {
	Resolve(ctx context.Context, domain string, customSuffixes []string) (string, error)
}

type readiness interface {
	Ready() bool
}

// Server is the HTTP API surface of the engine.
type Server struct {
	cfg      Config
	parser   Parser
	suffixes SuffixResolver
	router   chi.Router
	logger   logging.Logger

	mu             sync.RWMutex
	customSuffixes []string
}

func NewServer(cfg Config, parser Parser, suffixes SuffixResolver, logger logging.Logger) (*Server, error) {
	if parser == nil {
		return nil, ErrNilParser
	}
	if suffixes == nil {
		return nil, ErrNilSuffixes
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	s := &Server{
		cfg:      cfg,
		parser:   parser,
		suffixes: suffixes,
		router:   chi.NewRouter(),
		logger:   logger,
	}
	s.routes()
	return s, nil
}

// SetCustomSuffixes replaces the configured custom suffixes. Safe to call
// while serving.
func (s *Server) SetCustomSuffixes(suffixes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customSuffixes = slices.Clone(suffixes)
}

func (s *Server) suffixesFor(extra []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.customSuffixes)
	for _, e := range extra {
		if e = strings.Trim(strings.ToLower(strings.TrimSpace(e)), "."); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.requestIDMiddleware)
	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/v1/match", s.optionsHandler("POST"))
	r.Options("/v1/match/html", s.optionsHandler("POST"))
	r.Options("/v1/suffix", s.optionsHandler("GET"))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/match", s.handleMatch)
		r.Post("/match/html", s.handleMatchHTML)
		r.Get("/suffix", s.handleSuffix)
	})
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler. Bodies are never logged; they may carry
// credentials.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.maxBodyBytes())
	}
	s.router.ServeHTTP(w, r)
	s.logger.Info("http_request",
		logging.Field{Key: "method", Value: r.Method},
		logging.Field{Key: "path", Value: r.URL.Path},
		logging.Field{Key: "request_id", Value: w.Header().Get(requestIDHeader)},
		logging.Field{Key: "duration", Value: time.Since(start).String()})
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	rt := s.cfg.ReadTimeout
	if rt <= 0 {
		rt = 15 * time.Second
	}
	return &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadTimeout:       rt,
		ReadHeaderTimeout: rt,
		WriteTimeout:      30 * time.Second,
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, RequestID: w.Header().Get(requestIDHeader)})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

func parseAction(s string) (model.AutofillAction, error) {
	if s == "" {
		return model.ActionMatch, nil
	}
	a, ok := model.ParseAutofillAction(s)
	if !ok {
		return a, fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// --- HTTP handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", SuffixListReady: true}
	if rd, ok := s.suffixes.(readiness); ok {
		resp.SuffixListReady = rd.Ready()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var body MatchRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Package) == "" {
		writeError(w, http.StatusBadRequest, "package is required")
		return
	}
	if len(body.Windows) == 0 {
		writeError(w, http.StatusBadRequest, "windows are required")
		return
	}
	// The renderer identity is trusted through an in-process pin; callers
	// must not borrow it.
	if s.cfg.RendererPackage != "" && body.Package == s.cfg.RendererPackage {
		writeError(w, http.StatusBadRequest, "package is reserved")
		return
	}
	action, err := parseAction(body.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if len(body.Signatures) > 0 {
		certs := make([][]byte, 0, len(body.Signatures))
		for _, sig := range body.Signatures {
			der, err := base64.StdEncoding.DecodeString(sig)
			if err != nil {
				writeError(w, http.StatusBadRequest, "signatures must be base64")
				return
			}
			certs = append(certs, der)
		}
		ctx = trust.WithReportedCertificates(ctx, body.Package, certs)
	}

	s.match(ctx, w, formparser.Request{
		Package:        body.Package,
		Windows:        body.Windows,
		Manual:         body.Manual,
		CustomSuffixes: s.suffixesFor(body.CustomSuffixes),
	}, action, body.Credentials)
}

func (s *Server) handleMatchHTML(w http.ResponseWriter, r *http.Request) {
	var body HTMLMatchRequest
	if !decodeBody(w, r, &body) {
		return
	}
	action, err := parseAction(body.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.cfg.RendererPackage == "" {
		writeError(w, http.StatusNotImplemented, "html matching is not configured")
		return
	}

	// No frame loader: the server never fetches on behalf of a client.
	root, err := htmlform.BuildTree(r.Context(), body.URL, []byte(body.HTML), htmlform.Options{
		MaxFrameDepth: s.cfg.MaxFrameDepth,
		Logger:        s.logger,
	})
	if err != nil {
		if errors.Is(err, htmlform.ErrInvalidPageURL) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Warn("building page tree", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusUnprocessableEntity, "could not parse html")
		return
	}

	s.match(r.Context(), w, formparser.Request{
		Package:        s.cfg.RendererPackage,
		Windows:        []*model.ViewNode{root},
		Manual:         body.Manual,
		CustomSuffixes: s.suffixesFor(nil),
	}, action, body.Credentials)
}

func (s *Server) match(ctx context.Context, w http.ResponseWriter, req formparser.Request, action model.AutofillAction, creds *model.Credentials) {
	res, err := s.parser.Parse(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			writeError(w, http.StatusServiceUnavailable, "request canceled")
			return
		}
		s.logger.Warn("matching screen",
			logging.Field{Key: "package", Value: req.Package},
			logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if res == nil {
		writeJSON(w, http.StatusOK, MatchResponse{Matched: false})
		return
	}
	writeJSON(w, http.StatusOK, MatchResponse{Matched: true, Report: report.New(res, action, creds)})
}

func (s *Server) handleSuffix(w http.ResponseWriter, r *http.Request) {
	domain := strings.TrimSpace(r.URL.Query().Get("domain"))
	if domain == "" {
		writeError(w, http.StatusBadRequest, "domain is required")
		return
	}
	canonical, err := s.suffixes.Resolve(r.Context(), domain, s.suffixesFor(nil))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "suffix list unavailable")
		return
	}
	writeJSON(w, http.StatusOK, SuffixResponse{Domain: domain, Canonical: canonical})
}
