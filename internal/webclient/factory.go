package webclient

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
)

// BackendConstructor builds a page fetch backend from the webclient section of
// the configuration.
type BackendConstructor func(cfg Config, logger logging.Logger) (WebClient, error)

var (
	backendsMu sync.RWMutex
	backends   = map[string]BackendConstructor{}
)

// RegisterBackend makes a fetch backend selectable by name through the
// webclient.client setting. Names are case-insensitive; a later registration
// under the same name wins.
func RegisterBackend(name string, ctor BackendConstructor) {
	if name == "" || ctor == nil {
		return
	}
	backendsMu.Lock()
	backends[strings.ToLower(name)] = ctor
	backendsMu.Unlock()
}

// NewWebClient builds the backend the inspector fetches login pages with.
// An empty cfg.Client selects nethttp.
func NewWebClient(cfg Config, logger logging.Logger) (WebClient, error) {
	if logger == nil {
		return nil, errors.New("webclient: nil logger")
	}
	name := strings.ToLower(strings.TrimSpace(string(cfg.Client)))
	if name == "" {
		name = string(ClientNetHTTP)
	}

	backendsMu.RLock()
	ctor := backends[name]
	backendsMu.RUnlock()
	if ctor == nil {
		return nil, fmt.Errorf("webclient: unknown backend %q (have %v)", name, ListBackends())
	}

	wc, err := ctor(cfg, logger)
	switch {
	case err != nil:
		return nil, fmt.Errorf("webclient: backend %q: %w", name, err)
	case wc == nil:
		return nil, fmt.Errorf("webclient: backend %q returned no client", name)
	}
	return wc, nil
}

// ListBackends names the registered fetch backends in sorted order.
func ListBackends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	return slices.Sorted(maps.Keys(backends))
}
