package webclient

import "time"

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientChromedp Client = "chromedp"
)

// Config selects and tunes a WebClient backend.
type Config struct {
	Client Client `yaml:"client"`

	// Timeout bounds a single request. Zero means 30s.
	Timeout time.Duration `yaml:"timeout"`

	// IdleAfter is how long the network must stay quiet before a rendered
	// page is captured (chromedp only). Zero means 2s.
	IdleAfter time.Duration `yaml:"idle_after"`

	// Headful shows the browser window (chromedp only).
	Headful bool `yaml:"headful"`

	UserAgent string `yaml:"user_agent"`

	// MaxBodyBytes caps response bodies (nethttp only). Zero means 10 MiB.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

func (c Config) idleAfter() time.Duration {
	if c.IdleAfter <= 0 {
		return 2 * time.Second
	}
	return c.IdleAfter
}

func (c Config) maxBodyBytes() int64 {
	if c.MaxBodyBytes <= 0 {
		return 10 << 20
	}
	return c.MaxBodyBytes
}
