package server

import "time"

type Config struct {
	// Addr is the HTTP listen address for the API server.
	Addr        string
	ReadTimeout time.Duration

	// MaxBodyBytes caps request bodies. Zero means 4 MiB.
	MaxBodyBytes int64

	// RendererPackage is the package id under which HTML pages are matched.
	// It must be a trusted browser for page origins to be used.
	RendererPackage string

	// MaxFrameDepth bounds srcdoc iframe nesting for HTML matches.
	MaxFrameDepth int
}

func (c Config) maxBodyBytes() int64 {
	if c.MaxBodyBytes <= 0 {
		return 4 << 20
	}
	return c.MaxBodyBytes
}
