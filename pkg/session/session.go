// Package session is the per-invocation bag of lazily loaded state: the
// active project (if any), the persisted default platform, and the
// platform each of those yields. Each is memoized on first access so a
// dispatch that never needs the project platform never pays to
// discover it.
package session

import (
	"sync"

	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/toolchain"
)

type lazy[T any] struct {
	once sync.Once
	val  T
	err  error
}

func (l *lazy[T]) get(init func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.val, l.err = init()
	})
	return l.val, l.err
}

type projectState struct {
	platform toolchain.Platform
	found    bool
}

// Session holds everything one shim invocation needs to resolve and
// dispatch, loaded at most once regardless of how many components ask.
type Session struct {
	Layout layout.Layout
	cwd    string

	defaultPlatform lazy[toolchain.Platform]
	projectPlatform lazy[projectState]
}

// New creates a Session rooted at l, discovering project state relative
// to cwd.
func New(l layout.Layout, cwd string) *Session {
	return &Session{Layout: l, cwd: cwd}
}

// DefaultPlatform returns the persisted default platform, reading it
// from disk at most once per Session.
func (s *Session) DefaultPlatform() (toolchain.Platform, error) {
	return s.defaultPlatform.get(func() (toolchain.Platform, error) {
		return toolchain.ReadDefaultPlatform(s.Layout)
	})
}

// ProjectPlatform returns the nearest pinned project platform (if any),
// walking parent directories from cwd at most once per Session.
func (s *Session) ProjectPlatform() (toolchain.Platform, bool, error) {
	state, err := s.projectPlatform.get(func() (projectState, error) {
		p, found, err := toolchain.DiscoverProjectPlatform(s.cwd)
		return projectState{platform: p, found: found}, err
	})
	return state.platform, state.found, err
}

// EffectivePlatform computes the platform in effect for an invocation:
// commandLine ⊕ project ⊕ default, in that precedence order.
func (s *Session) EffectivePlatform(commandLine toolchain.Platform) (toolchain.Platform, error) {
	def, err := s.DefaultPlatform()
	if err != nil {
		return toolchain.Platform{}, err
	}
	proj, _, err := s.ProjectPlatform()
	if err != nil {
		return toolchain.Platform{}, err
	}
	return toolchain.Merge(toolchain.Merge(commandLine, proj), def), nil
}

// InProject reports whether a project platform pin was found.
func (s *Session) InProject() (bool, error) {
	_, found, err := s.ProjectPlatform()
	return found, err
}

// Cwd returns the directory project discovery is rooted at.
func (s *Session) Cwd() string { return s.cwd }
