// Package app wires configuration into the engine and its outer surfaces.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/config"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/enumerator"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/fetcher"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/formparser"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/server"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/suffix"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/trust"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/webclient"
)

// RendererPackage is the browser identity pages fetched or posted as HTML are
// matched under. It is trusted with the WebView method through a pin that is
// generated per process. Because the pin is served from the fallback inspector,
// device captures (POST /v1/match and the match command) may not use it.
const RendererPackage = "autofill-inspect.renderer"

// Application is the runtime state shared by the commands.
type Application struct {
	Config *config.Config
	Logger logging.Logger

	Registry *trust.Registry
	Suffixes *suffix.Service
	Parser   *formparser.Parser
}

// New builds the engine from cfg. The public suffix list starts loading in
// the background right away.
func New(cfg *config.Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	static, err := trust.DecodeCertificates(cfg.Autofill.Signatures)
	if err != nil {
		return nil, fmt.Errorf("decode signatures: %w", err)
	}
	rendererCert := []byte(uuid.NewString())
	static[RendererPackage] = [][]byte{rendererCert}

	extra := append([]trust.Entry{}, cfg.Autofill.Browsers...)
	extra = append(extra, trust.Entry{
		Package:           RendererPackage,
		Method:            trust.MultiOriginWebView,
		CertificateHashes: []string{trust.ComputeCertificatesHash([][]byte{rendererCert})},
	})

	reg, err := trust.NewRegistry(trust.RequestInspector{Fallback: static}, trust.Options{
		Pins:  cfg.Autofill.Pins,
		Extra: extra,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("new trust registry: %w", err)
	}

	svc, err := suffix.NewService(suffix.Embedded, logger)
	if err != nil {
		return nil, fmt.Errorf("new suffix service: %w", err)
	}
	svc.Prefetch()

	parser, err := formparser.New(reg, svc, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("new parser: %w", err)
	}

	return &Application{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		Suffixes: svc,
		Parser:   parser,
	}, nil
}

// NewWebClient constructs the configured fetch backend.
func (a *Application) NewWebClient() (webclient.WebClient, error) {
	webclient.RegisterDefaultBackends()
	return webclient.NewWebClient(a.Config.WebClient, a.Logger)
}

// NewFetcher returns a fetcher matching pages as RendererPackage.
func (a *Application) NewFetcher(wc webclient.WebClient, followFrames, manual bool) (*fetcher.Fetcher, error) {
	return fetcher.New(fetcher.Config{
		MaxConcurrency: a.Config.Inspect.Concurrency,
		Package:        RendererPackage,
		MaxFrameDepth:  a.Config.Inspect.MaxFrameDepth,
		FollowFrames:   followFrames,
		Manual:         manual,
		CustomSuffixes: a.Config.Autofill.CustomSuffixes,
	}, wc, a.Parser, a.Logger)
}

// NewSpider returns a crawler that stays within a target's site as the
// suffix service sees it.
func (a *Application) NewSpider(wc webclient.WebClient, depth int) (*enumerator.Spider, error) {
	s, err := enumerator.NewSpider(depth, wc, a.Suffixes, a.Logger)
	if err != nil {
		return nil, err
	}
	s.MaxPages = a.Config.Inspect.MaxPages
	s.CustomSuffixes = a.Config.Autofill.CustomSuffixes
	return s, nil
}

// NewServer returns the HTTP API over the engine.
func (a *Application) NewServer() (*server.Server, error) {
	s, err := server.NewServer(server.Config{
		Addr:            a.Config.Server.Addr,
		ReadTimeout:     a.Config.Server.ReadTimeout,
		MaxBodyBytes:    a.Config.Server.MaxBodyBytes,
		RendererPackage: RendererPackage,
		MaxFrameDepth:   a.Config.Inspect.MaxFrameDepth,
	}, a.Parser, a.Suffixes, a.Logger)
	if err != nil {
		return nil, err
	}
	s.SetCustomSuffixes(a.Config.Autofill.CustomSuffixes)
	return s, nil
}

// Serve runs the API until ctx is done. When loader is non-nil, edits to the
// config file update the custom suffixes without a restart; other settings
// need one.
func (a *Application) Serve(ctx context.Context, loader *config.Loader) error {
	s, err := a.NewServer()
	if err != nil {
		return err
	}

	if loader != nil {
		loader.OnChange(func(cfg *config.Config) {
			s.SetCustomSuffixes(cfg.Autofill.CustomSuffixes)
			a.Logger.Info("configuration reloaded",
				logging.Field{Key: "custom_suffixes", Value: len(cfg.Autofill.CustomSuffixes)})
		})
		if err := loader.Watch(); err != nil {
			a.Logger.Warn("config hot reload disabled", logging.Field{Key: "error", Value: err.Error()})
		} else {
			go a.logReloadErrors(ctx, loader)
		}
	}

	hs := s.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("api server listening", logging.Field{Key: "addr", Value: hs.Addr})
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("api server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *Application) logReloadErrors(ctx context.Context, loader *config.Loader) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-loader.Errors():
			a.Logger.Warn("config reload failed", logging.Field{Key: "error", Value: err.Error()})
		}
	}
}
