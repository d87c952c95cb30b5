// Package demoserver serves fixture sign-in pages for exercising the
// inspector against real HTTP.
package demoserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
)

// DemoServer serves the fixture pages. Each page can be switched between
// versions at runtime through the /demo endpoints.
type DemoServer struct {
	cfg       Config
	pages     map[string]PageDefinition
	templates map[string]map[int]*template.Template
	logger    logging.Logger
	router    chi.Router

	mu       sync.RWMutex
	versions map[string]int // path -> current version
}

// NewDemoServer creates a demo server. Page templates are parsed eagerly so
// a broken fixture fails at construction.
func NewDemoServer(cfg Config, logger logging.Logger) (*DemoServer, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.InitialVersion < 1 {
		cfg.InitialVersion = 1
	}

	s := &DemoServer{
		cfg:       cfg,
		pages:     make(map[string]PageDefinition),
		templates: make(map[string]map[int]*template.Template),
		versions:  make(map[string]int),
		logger:    logger.With(logging.Field{Key: "component", Value: "demoserver"}),
		router:    chi.NewRouter(),
	}
	for _, p := range GetAllPages() {
		s.pages[p.Path] = p
		s.versions[p.Path] = cfg.InitialVersion
		s.templates[p.Path] = make(map[int]*template.Template, len(p.Versions))
		for v, pv := range p.Versions {
			tmpl, err := template.New(p.Path).Parse(pv.HTML)
			if err != nil {
				return nil, fmt.Errorf("page %s v%d: %w", p.Path, v, err)
			}
			s.templates[p.Path][v] = tmpl
		}
	}
	s.routes()
	return s, nil
}

func (s *DemoServer) routes() {
	r := s.router
	r.Get("/", s.indexHandler)
	for path := range s.pages {
		r.Get(path, s.pageHandler(path))
	}
	r.Route("/demo", func(r chi.Router) {
		r.Get("/pages", s.getVersionsHandler)
		r.Post("/set-version", s.setVersionHandler)
		r.Post("/reset", s.resetVersionsHandler)
	})
}

// ServeHTTP implements http.Handler.
func (s *DemoServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens on cfg.Port until ctx is done.
func (s *DemoServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("demo server listening", logging.Field{Key: "addr", Value: srv.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// pageHandler returns a handler for a specific page path.
func (s *DemoServer) pageHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		version := s.versions[path]
		s.mu.RUnlock()

		pageDef := s.pages[path]
		// Fall back to the closest lower version.
		for ; version > 1; version-- {
			if _, ok := pageDef.Versions[version]; ok {
				break
			}
		}
		tmpl, ok := s.templates[path][version]
		if !ok {
			http.NotFound(w, r)
			return
		}

		for k, v := range pageDef.Versions[version].Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(http.StatusOK)
		if err := tmpl.Execute(w, pageData{FrameOrigin: crossOrigin(r)}); err != nil {
			s.logger.Warn("render page failed",
				logging.Field{Key: "path", Value: path},
				logging.Field{Key: "error", Value: err.Error()})
		}
	}
}

// crossOrigin returns an origin on the same listener that a browser treats
// as foreign, by swapping between localhost and the loopback address.
func crossOrigin(r *http.Request) string {
	host, port, err := net.SplitHostPort(r.Host)
	if err != nil {
		host, port = r.Host, ""
	}
	switch host {
	case "localhost":
		host = "127.0.0.1"
	default:
		host = "localhost"
	}
	if port != "" {
		host = net.JoinHostPort(host, port)
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + host
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Autofill fixtures</title></head>
<body>
<h1>Autofill fixtures</h1>
<ul>
{{range .}}  <li><a href="{{.Path}}">{{.Path}}</a> v{{.CurrentVersion}}: {{.Description}}</li>
{{end}}</ul>
</body>
</html>
`))

func (s *DemoServer) indexHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, s.pageInfos()); err != nil {
		s.logger.Warn("render index failed", logging.Field{Key: "error", Value: err.Error()})
	}
}

// PageInfo describes a fixture page and its version state.
type PageInfo struct {
	Path              string `json:"path"`
	Description       string `json:"description"`
	Fillable          bool   `json:"fillable"`
	CurrentVersion    int    `json:"current_version"`
	AvailableVersions []int  `json:"available_versions"`
}

func (s *DemoServer) pageInfos() []PageInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pages := make([]PageInfo, 0, len(s.pages))
	for path, pageDef := range s.pages {
		versions := make([]int, 0, len(pageDef.Versions))
		for v := range pageDef.Versions {
			versions = append(versions, v)
		}
		slices.Sort(versions)
		pages = append(pages, PageInfo{
			Path:              path,
			Description:       pageDef.Description,
			Fillable:          pageDef.Fillable,
			CurrentVersion:    s.versions[path],
			AvailableVersions: versions,
		})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Path < pages[j].Path })
	return pages
}

// getVersionsHandler returns the current versions of all pages.
func (s *DemoServer) getVersionsHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.pageInfos())
}

// setVersionHandler sets the version for a specific page.
func (s *DemoServer) setVersionHandler(w http.ResponseWriter, r *http.Request) {
	path := r.FormValue("path")
	version, err := strconv.Atoi(r.FormValue("version"))
	if err != nil || version < 1 {
		http.Error(w, "invalid version number", http.StatusBadRequest)
		return
	}
	pageDef, ok := s.pages[path]
	if !ok {
		http.Error(w, "unknown page", http.StatusNotFound)
		return
	}
	if _, ok := pageDef.Versions[version]; !ok {
		http.Error(w, "unknown version", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.versions[path] = version
	s.mu.Unlock()

	s.logger.Info("page version changed",
		logging.Field{Key: "path", Value: path},
		logging.Field{Key: "version", Value: version})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"path":    path,
		"version": version,
	})
}

// resetVersionsHandler resets all pages to the initial version.
func (s *DemoServer) resetVersionsHandler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	for path := range s.versions {
		s.versions[path] = s.cfg.InitialVersion
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "all versions reset",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
