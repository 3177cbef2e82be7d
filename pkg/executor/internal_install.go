package executor

import (
	"net/http"
	"time"

	"github.com/flanksource/jsvm/pkg/fetcher"
	jsvmhttp "github.com/flanksource/jsvm/pkg/http"
	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/registry"
	"github.com/flanksource/jsvm/pkg/session"
	"github.com/flanksource/jsvm/pkg/version"
)

// RegistryOptions configures the HTTP lookups InternalInstall needs to
// turn a VersionSpec into a concrete Version before fetching it.
type RegistryOptions struct {
	HTTPClient      *http.Client
	NodeIndexURL    string
	PackageRegistry string
}

func (o RegistryOptions) client() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return jsvmhttp.GetHttpClient()
}

// InternalInstall dispatches to the native fetch path rather than a
// child process: this is what `jst install`/`jst pin`/`jst fetch`
// actually run, as opposed to the Tool variant that dispatches an
// already-resolved platform to a subprocess.
type InternalInstall struct {
	Family   layout.Family
	Spec     version.VersionSpec
	Registry RegistryOptions
	// OnResolved runs after the image is guaranteed present, e.g. to
	// persist a newly resolved version into the default or project
	// platform. A `jst fetch` leaves this nil: fetch populates the
	// inventory without touching any pin.
	OnResolved func(l layout.Layout, v version.Version) error
}

// Resolve turns in.Spec into a concrete Version using the appropriate
// registry, without fetching anything. Exposed so callers that need to
// resolve-then-fetch-then-pin (e.g. `jst pin`) can reuse the lookup
// without going through OnResolved.
func (in *InternalInstall) Resolve(sess *session.Session) (version.Version, error) {
	return in.resolve(sess)
}

func (in *InternalInstall) resolve(sess *session.Session) (version.Version, error) {
	if in.Spec.Kind == version.SpecNone {
		return version.Version{}, &version.ErrNoMatch{Tool: string(in.Family), Spec: "(none)"}
	}

	if in.Family == layout.Node {
		idx, err := registry.FetchIndex(in.Registry.client(), sess.Layout, in.Registry.NodeIndexURL, time.Now())
		if err != nil {
			return version.Version{}, err
		}
		return idx.Resolve(in.Spec)
	}

	meta, err := registry.FetchPackageMetadata(in.Registry.client(), in.Registry.PackageRegistry, string(in.Family))
	if err != nil {
		return version.Version{}, err
	}
	return meta.Resolve(in.Spec)
}

// EnsureImage guarantees family/v is present on disk, the same
// fetch-if-missing path Run uses internally; exported for callers like
// `jst pin` that need to fetch a resolved version without going through
// a full InternalInstall.
func EnsureImage(l layout.Layout, family layout.Family, v version.Version, opts fetcher.Options) (string, error) {
	return ensureImage(l, family, v, opts)
}

// Run resolves in.Spec against the appropriate registry, ensures the
// resulting image is fetched, and hands the resolved version to
// OnResolved if set.
func (in *InternalInstall) Run(sess *session.Session, opts fetcher.Options) (int, error) {
	v, err := in.resolve(sess)
	if err != nil {
		return 0, err
	}

	if _, err := ensureImage(sess.Layout, in.Family, v, opts); err != nil {
		return 0, err
	}

	if in.OnResolved != nil {
		if err := in.OnResolved(sess.Layout, v); err != nil {
			return 0, err
		}
	}
	return 0, nil
}
