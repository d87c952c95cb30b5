// Package formparser is the entry point of the autofill engine: it walks the
// windows of a request, runs the rule strategy and settles the origin that
// credentials may be looked up for.
package formparser

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/origin"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/rules"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/scenario"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/trust"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/walker"
)

var (
	ErrNilRegistry = errors.New("formparser: nil browser registry")
	ErrNilResolver = errors.New("formparser: nil suffix resolver")
	ErrNilLogger   = errors.New("formparser: nil logger")
	ErrNoPackage   = errors.New("formparser: request without package")
	ErrNoWindows   = errors.New("formparser: request without windows")
)

// BrowserLookup is satisfied by *trust.Registry.
type BrowserLookup interface {
	Lookup(ctx context.Context, pkg string) (trust.BrowserInfo, bool)
}

// Parser is safe for concurrent use; every Parse call works on its own data.
type Parser struct {
	browsers BrowserLookup
	resolver origin.Resolver
	strategy *rules.Strategy
	logger   logging.Logger
}

// New returns a Parser. A nil strategy selects rules.DefaultStrategy.
func New(browsers BrowserLookup, resolver origin.Resolver, strategy *rules.Strategy, logger logging.Logger) (*Parser, error) {
	if browsers == nil {
		return nil, ErrNilRegistry
	}
	if resolver == nil {
		return nil, ErrNilResolver
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if strategy == nil {
		strategy = rules.DefaultStrategy(logger)
	}
	return &Parser{
		browsers: browsers,
		resolver: resolver,
		strategy: strategy,
		logger:   logger.With(logging.Field{Key: "component", Value: "formparser"}),
	}, nil
}

// Parse matches req. It returns (nil, nil) when the screen offers nothing to
// fill or save, including when a candidate was rejected for crossing origins.
func (p *Parser) Parse(ctx context.Context, req Request) (*Result, error) {
	if req.Package == "" {
		return nil, ErrNoPackage
	}
	if len(req.Windows) == 0 {
		return nil, ErrNoWindows
	}

	id := uuid.NewString()
	log := p.logger.With(
		logging.Field{Key: "request_id", Value: id},
		logging.Field{Key: "package", Value: req.Package},
	)

	info, trusted := p.browsers.Lookup(ctx, req.Package)
	singleOrigin := trusted && info.Method == trust.MultiOriginNone

	walked := walker.Walk(req.Windows, walker.Options{
		PassDownWebOrigins: trusted && info.Method == trust.MultiOriginWebView,
	})
	var tracked []string
	if trusted {
		tracked = origin.Track(req.Windows)
	}
	log.Debug("tree walked",
		logging.Field{Key: "fields", Value: len(walked.Fields)},
		logging.Field{Key: "ignored", Value: len(walked.IgnoredIDs)},
		logging.Field{Key: "trusted_browser", Value: trusted},
		logging.Field{Key: "single_origin", Value: singleOrigin})

	out := p.strategy.Match(walked.Fields, singleOrigin, req.Manual)
	if len(out.Vetoed) > 0 {
		log.Warn("candidate scenario rejected by origin check", logging.Field{Key: "rules", Value: out.Vetoed})
	}
	if out.Scenario == nil {
		log.Debug("no scenario")
		return nil, nil
	}

	formOrigin, err := origin.Determine(ctx, p.resolver, origin.Input{
		Package:          req.Package,
		TrustedBrowser:   trusted,
		SingleOriginMode: singleOrigin,
		Tracked:          tracked,
		Scenario:         out.Scenario,
		CustomSuffixes:   req.CustomSuffixes,
	})
	if err != nil {
		return nil, fmt.Errorf("determine origin: %w", err)
	}
	if formOrigin == nil {
		log.Warn("no usable origin for scenario", logging.Field{Key: "rule", Value: out.Rule})
		return nil, nil
	}

	res := &Result{
		RequestID:  id,
		Rule:       out.Rule,
		Scenario:   scenario.IDs(out.Scenario),
		Fields:     out.Scenario,
		Origin:     formOrigin,
		IgnoredIDs: walked.IgnoredIDs,
	}
	if trusted {
		b := info
		res.Browser = &b
		res.SaveFlags = info.SaveFlags
	}
	log.Info("scenario matched",
		logging.Field{Key: "rule", Value: out.Rule},
		logging.Field{Key: "fields", Value: len(out.Scenario.AllFields())})
	return res, nil
}
