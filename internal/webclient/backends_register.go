package webclient

import (
	"sync"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
)

var registerOnce sync.Once

// RegisterDefaultBackends registers the nethttp and chromedp backends. It is
// safe to call more than once.
func RegisterDefaultBackends() {
	registerOnce.Do(func() {
		RegisterBackend(string(ClientNetHTTP), func(cfg Config, logger logging.Logger) (WebClient, error) {
			return NewNetHTTPClient(cfg, logger, nil)
		})
		RegisterBackend(string(ClientChromedp), func(cfg Config, logger logging.Logger) (WebClient, error) {
			return NewChromedpClient(cfg, logger)
		})
	})
}
