// File: internal/infra/adapters/ai/registry.go
package ai

import (
	"fmt"
	"strings"

	"paper-assistant/internal/domain"
	"paper-assistant/internal/domain/ports/adapter"
)

// preferenceOrder is the fallback order when the caller does not name a
// provider or names one that is not configured.
var preferenceOrder = []string{"claude", "openai", "gemini"}

// Registry holds the configured correctors and resolves requests to one of
// them by name or by preference order.
type Registry struct {
	byName map[string]adapter.Corrector
	order  []string
}

func NewRegistry(correctors ...adapter.Corrector) *Registry {
	r := &Registry{byName: make(map[string]adapter.Corrector, len(correctors))}
	for _, c := range correctors {
		if c == nil {
			continue
		}
		name := strings.ToLower(c.Name())
		if _, dup := r.byName[name]; dup {
			continue
		}
		r.byName[name] = c
	}
	for _, name := range preferenceOrder {
		if _, ok := r.byName[name]; ok {
			r.order = append(r.order, name)
		}
	}
	// providers outside the known preference list go last, registration order
	for _, c := range correctors {
		if c == nil {
			continue
		}
		name := strings.ToLower(c.Name())
		if !contains(r.order, name) {
			r.order = append(r.order, name)
		}
	}
	return r
}

// Resolve returns the corrector for the requested provider, falling back to
// the first available provider in preference order when the request is empty
// or names an unavailable provider. Returns domain.ErrNoProvider when nothing
// is available.
func (r *Registry) Resolve(preferred string) (adapter.Corrector, error) {
	preferred = strings.ToLower(strings.TrimSpace(preferred))
	if preferred != "" {
		if c, ok := r.byName[preferred]; ok && c.Available() {
			return c, nil
		}
	}
	for _, name := range r.order {
		if c := r.byName[name]; c.Available() {
			return c, nil
		}
	}
	if preferred != "" {
		return nil, fmt.Errorf("%w: %q not configured and no fallback available", domain.ErrNoProvider, preferred)
	}
	return nil, fmt.Errorf("%w: no corrector configured", domain.ErrNoProvider)
}

// ProviderStatus is the /providers view of one registered corrector.
type ProviderStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Providers lists registered correctors in resolution order.
func (r *Registry) Providers() []ProviderStatus {
	out := make([]ProviderStatus, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, ProviderStatus{Name: name, Available: r.byName[name].Available()})
	}
	return out
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
