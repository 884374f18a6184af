// Package media defines the asset descriptor and the registry boundary the
// export core resolves clips against. The registry itself (file import,
// probing, persistence) belongs to the host editor; the core only consumes
// this interface.
package media

import (
	"errors"
	"fmt"
	"sync"

	"github.com/backmassage/rendercut/internal/captions"
)

// ErrNotFound is returned by Registry.Resolve for unknown asset ids.
var ErrNotFound = errors.New("asset not found")

// Asset describes an imported media file. Immutable once registered: the
// preparer and compiler read it but never write it back.
type Asset struct {
	ID       string  `json:"id"`
	Path     string  `json:"path"`
	Duration float64 `json:"duration"` // Total length in seconds.
	HasAudio bool    `json:"hasAudio"`
	HasVideo bool    `json:"hasVideo"`

	// Captions is the asset's caption document in asset-relative seconds,
	// as produced by the external transcription service. Nil when absent.
	Captions *captions.Document `json:"captions,omitempty"`
}

// Registry resolves asset ids to their descriptors.
type Registry interface {
	// Resolve returns the asset for id, or an error wrapping ErrNotFound.
	Resolve(id string) (Asset, error)
}

// MemoryRegistry is a concurrency-safe in-memory Registry. The daemon's
// control surface registers assets here; tests seed it directly.
type MemoryRegistry struct {
	mu     sync.RWMutex
	assets map[string]Asset
}

// NewMemoryRegistry returns an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{assets: make(map[string]Asset)}
}

// Register adds or replaces an asset by id.
func (r *MemoryRegistry) Register(a Asset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[a.ID] = a
}

// Resolve implements Registry.
func (r *MemoryRegistry) Resolve(id string) (Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assets[id]
	if !ok {
		return Asset{}, fmt.Errorf("resolve %q: %w", id, ErrNotFound)
	}
	return a, nil
}

// Len returns the number of registered assets.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.assets)
}
