// Package upload publishes report artifacts to remote object storage.
package upload

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
)

// Provider stores objects in a remote bucket.
type Provider interface {
	// Configure validates settings and prepares a client. It does not contact the remote.
	Configure(config map[string]any) error
	// Verify checks that the remote destination is reachable.
	Verify(ctx context.Context) error
	// Upload stores size bytes from reader under objectName. size may be -1 when unknown.
	Upload(ctx context.Context, reader io.Reader, size int64, objectName, contentType string) error
	Name() string
}

// ProviderFactory creates an unconfigured provider.
type ProviderFactory func() Provider

var (
	registryMu sync.RWMutex
	registry   = map[string]ProviderFactory{
		"minio": func() Provider { return NewMinioProvider() },
	}
)

// RegisterProvider adds or replaces a provider factory.
func RegisterProvider(name string, factory ProviderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// NewProvider creates a provider by name.
func NewProvider(name string) (Provider, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown upload provider: %s", name)
	}
	return factory(), nil
}

// Providers lists the registered provider names in order.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
