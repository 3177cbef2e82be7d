package fetcher

import (
	"fmt"
	"strings"
	"sync"

	"github.com/flanksource/gomplate/v3"

	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/version"
)

// DistributionHooks is a registry of per-family URL templates that
// override DownloadURL's built-in construction. A hook is a gomplate
// template string rendered against the archive's mirror, family,
// version, and basename.
type DistributionHooks struct {
	mu    sync.RWMutex
	hooks map[layout.Family]string
}

// NewDistributionHooks returns an empty hook registry.
func NewDistributionHooks() *DistributionHooks {
	return &DistributionHooks{hooks: make(map[layout.Family]string)}
}

// Register installs tmpl as the URL template consulted for family.
// tmpl is a gomplate template with "Mirror", "Family", "Version", and
// "Basename" available as dot fields, e.g.
// "{{.Mirror}}/{{.Family}}/v{{.Version}}/{{.Basename}}".
func (h *DistributionHooks) Register(family layout.Family, tmpl string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks[family] = tmpl
}

func (h *DistributionHooks) get(family layout.Family) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	tmpl, ok := h.hooks[family]
	return tmpl, ok
}

// DefaultDistributionHooks is consulted by ResolveDownloadURL when
// Options.Hooks is nil. Tools that ship from a non-standard mirror
// layout (a private npm-compatible registry, an internal node mirror
// with a different path scheme) register a hook here instead of
// patching DownloadURL.
var DefaultDistributionHooks = NewDistributionHooks()

// ResolveDownloadURL returns the URL to fetch basename from: a
// registered distribution hook's rendered template if family has one,
// otherwise DownloadURL's built-in construction. hooks may be nil, in
// which case DefaultDistributionHooks is consulted.
func ResolveDownloadURL(hooks *DistributionHooks, mirror string, family layout.Family, v version.Version, basename string) (string, error) {
	if hooks == nil {
		hooks = DefaultDistributionHooks
	}
	tmpl, ok := hooks.get(family)
	if !ok {
		return DownloadURL(mirror, family, v, basename), nil
	}

	data := map[string]interface{}{
		"Mirror":   strings.TrimRight(mirror, "/"),
		"Family":   string(family),
		"Version":  v.String(),
		"Basename": basename,
	}
	out, err := gomplate.RunTemplate(data, gomplate.Template{Template: tmpl})
	if err != nil {
		return "", fmt.Errorf("distribution hook template for %s: %w", family, err)
	}
	return out, nil
}
