// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"sort"
	"sync"
)

// OutputFactory creates an output. Implementations should validate opts
// and return descriptive errors.
type OutputFactory func(opts Options) (Output, error)

// RegistryEntry is a registered output kind.
type RegistryEntry struct {
	Name string

	// Priority orders selection, higher first. Window-system outputs use
	// 100, headless outputs 10.
	Priority int

	Factory OutputFactory

	// Available reports whether the output can be created on this system.
	Available func() bool
}

var globalRegistry = NewRegistry()

// Registry maps names to output factories. Hosts register their window
// outputs so that tools can pick one by name:
//
//	func init() {
//	    surface.Register("x11", 100, newX11Output, x11Available)
//	}
//
//	out, err := surface.NewOutputByName("x11", surface.DefaultOptions(800, 600))
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry creates an empty registry. Most code uses the global one.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*RegistryEntry)}
}

// Register adds an output kind to the global registry. A nil available
// means always available. Registering an existing name replaces it.
func Register(name string, priority int, factory OutputFactory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes an output kind from the global registry.
func Unregister(name string) { globalRegistry.Unregister(name) }

// List returns the registered names, highest priority first.
func List() []string { return globalRegistry.List() }

// Available returns the available names, highest priority first.
func Available() []string { return globalRegistry.Available() }

// NewOutput creates an output of the best available kind.
func NewOutput(opts Options) (Output, error) { return globalRegistry.NewOutput(opts) }

// NewOutputByName creates an output of the named kind.
func NewOutputByName(name string, opts Options) (Output, error) {
	return globalRegistry.NewOutputByName(name, opts)
}

func (r *Registry) Register(name string, priority int, factory OutputFactory, available func() bool) {
	if available == nil {
		available = func() bool { return true }
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = &RegistryEntry{Name: name, Priority: priority, Factory: factory, Available: available}
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames(false)
}

func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames(true)
}

// Get returns a copy of the named entry.
func (r *Registry) Get(name string) (RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return RegistryEntry{}, false
	}
	return *e, true
}

// NewOutput tries every available kind in priority order and returns the
// first output created.
func (r *Registry) NewOutput(opts Options) (Output, error) {
	names := r.Available()
	if len(names) == 0 {
		return nil, ErrNoOutputAvailable
	}
	var errs []error
	for _, name := range names {
		out, err := r.NewOutputByName(name, opts)
		if err == nil {
			return out, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

func (r *Registry) NewOutputByName(name string, opts Options) (Output, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &OutputNotFoundError{Name: name}
	}
	if !e.Available() {
		return nil, &OutputUnavailableError{Name: name}
	}
	return e.Factory(opts)
}

// sortedNames must be called with the lock held.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	entries := make([]*RegistryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// ErrNoOutputAvailable is returned when no output kind is registered or
// available.
var ErrNoOutputAvailable = errors.New("surface: no output available")

// OutputNotFoundError indicates a name that is not registered.
type OutputNotFoundError struct {
	Name string
}

func (e *OutputNotFoundError) Error() string {
	return "surface: output not found: " + e.Name
}

// OutputUnavailableError indicates a registered kind that cannot be
// created on this system.
type OutputUnavailableError struct {
	Name string
}

func (e *OutputUnavailableError) Error() string {
	return "surface: output unavailable: " + e.Name
}

func init() {
	Register("image", 10, func(opts Options) (Output, error) {
		return NewImageOutput(opts), nil
	}, nil)
}
