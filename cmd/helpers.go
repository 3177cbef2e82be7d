package cmd

import (
	"strings"

	"github.com/flanksource/jsvm/pkg/executor"
	"github.com/flanksource/jsvm/pkg/fetcher"
	jsvmhttp "github.com/flanksource/jsvm/pkg/http"
	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/toolchain"
)

// familyForName maps a reserved tool name to its layout.Family.
func familyForName(name string) (layout.Family, bool) {
	switch name {
	case "node":
		return layout.Node, true
	case "npm":
		return layout.Npm, true
	case "pnpm":
		return layout.Pnpm, true
	case "yarn":
		return layout.Yarn, true
	default:
		return "", false
	}
}

func registryOptionsFromSettings() executor.RegistryOptions {
	return executor.RegistryOptions{
		HTTPClient: jsvmhttp.GetHttpClient(),
		// The index lives alongside the archives, so a dist-mirror
		// override redirects both.
		NodeIndexURL:    strings.TrimRight(settings.NodeDistMirror, "/") + "/index.json",
		PackageRegistry: settings.PackageRegistry,
	}
}

func fetcherOptionsFromSettings() fetcher.Options {
	return fetcher.Options{DistMirror: settings.NodeDistMirror}
}

// pickManager chooses which package manager should service a
// third-party package install/link/upgrade: yarn if the effective
// platform names one, pnpm if the feature gate is on and the platform
// names one, npm otherwise.
func pickManager(p toolchain.Platform) toolchain.Manager {
	if p.Yarn.Present() {
		return toolchain.ManagerYarn
	}
	if p.Pnpm.Present() && settings.FeaturePnpm {
		return toolchain.ManagerPnpm
	}
	return toolchain.ManagerNpm
}
