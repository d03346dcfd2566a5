package servers

import (
	"errors"
	"fmt"
)

// ErrNoServers indicates an empty server registry. This is a fatal
// configuration error: no playback session can start without at least one
// source.
var ErrNoServers = errors.New("server registry is empty")

// Registry exposes an ordered, immutable list of playback sources
type Registry struct {
	servers []ServerDescriptor
}

// NewRegistry creates a registry from the given descriptor list
func NewRegistry(list []ServerDescriptor) (*Registry, error) {
	if len(list) == 0 {
		return nil, ErrNoServers
	}

	servers := make([]ServerDescriptor, len(list))
	copy(servers, list)

	return &Registry{servers: servers}, nil
}

// Default creates a registry backed by the built-in catalog
func Default() (*Registry, error) {
	return NewRegistry(Catalog())
}

// All returns the descriptors in display order
func (r *Registry) All() []ServerDescriptor {
	result := make([]ServerDescriptor, len(r.servers))
	copy(result, r.servers)
	return result
}

// ByIndex returns the descriptor at the given position
func (r *Registry) ByIndex(i int) (ServerDescriptor, error) {
	if i < 0 || i >= len(r.servers) {
		return ServerDescriptor{}, fmt.Errorf("server index %d out of range (have %d servers)", i, len(r.servers))
	}
	return r.servers[i], nil
}

// Len returns the number of registered servers
func (r *Registry) Len() int {
	return len(r.servers)
}
