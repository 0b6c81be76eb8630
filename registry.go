package reddit

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ItemSource is the entry point a host registers to serve random media.
// Provider implements it.
type ItemSource interface {
	GetRandomItem(ctx context.Context, key, userID string) (MediaItem, error)
}

// Capabilities describes a media source to the host's source registry:
// identity, ranking priority, a runtime enabled check and the fetch entry
// point. Registration replaces the implicit plugin-host polymorphism the
// provider originally relied on.
type Capabilities struct {
	Name        string
	DisplayName string
	Description string
	Priority    int
	Enabled     func() bool
	Source      ItemSource
}

// Capabilities returns this provider's registration record. enabled may be
// nil, in which case the source reports always-enabled.
func (p *Provider) Capabilities(enabled func() bool) Capabilities {
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return Capabilities{
		Name:        SourceName,
		DisplayName: "Reddit",
		Description: "Reddit media source with prefetch caching and dictionary integration",
		Priority:    90,
		Enabled:     enabled,
		Source:      p,
	}
}

// Registry holds registered media sources keyed by name.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Capabilities
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Capabilities)}
}

// Register adds a source. Names must be unique and non-empty.
func (r *Registry) Register(c Capabilities) error {
	if c.Name == "" {
		return errors.New("source name cannot be empty")
	}
	if c.Source == nil {
		return errors.New("source entry point cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.sources[c.Name]; dup {
		return errors.New("source already registered: " + c.Name)
	}
	r.sources[c.Name] = c
	return nil
}

// Get returns the source registered under name.
func (r *Registry) Get(name string) (Capabilities, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.sources[name]
	return c, ok
}

// Sources returns all registered sources, highest priority first.
func (r *Registry) Sources() []Capabilities {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Capabilities, 0, len(r.sources))
	for _, c := range r.sources {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	return out
}
