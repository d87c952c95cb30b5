package fetcher

type Config struct {
	MaxConcurrency int

	// Package is the browser package id pages are matched as.
	Package string

	MaxFrameDepth int

	// FollowFrames fetches cross-document iframes through the same client.
	FollowFrames bool

	Manual         bool
	CustomSuffixes []string
}
