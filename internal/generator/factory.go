// Package generator writes knowledge-check questions for a document by
// prompting an LLM provider and normalising its JSON reply.
package generator

import (
	"fmt"
	"sort"
	"sync"

	"knowbase/internal/config"
	"knowbase/internal/port"
)

// Options are the request-level settings shared by every provider.
type Options struct {
	MaxTokens     int
	Temperature   float32
	ContentTokens int
}

// ProviderFactory creates a TestGenerator from a provider config.
type ProviderFactory func(cfg *config.LLMProviderConfig, opts Options) (port.TestGenerator, error)

var (
	mu        sync.RWMutex
	providers = map[string]ProviderFactory{}
)

// RegisterProvider registers a provider factory by name. Provider packages
// call it from init.
func RegisterProvider(name string, factory ProviderFactory) {
	mu.Lock()
	defer mu.Unlock()
	providers[name] = factory
}

// Providers lists the registered provider names.
func Providers() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(providers))
	for n := range providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewGenerator creates a TestGenerator using the registered factory for cfg.Provider.
func NewGenerator(cfg *config.LLMProviderConfig, opts Options) (port.TestGenerator, error) {
	mu.RLock()
	factory, ok := providers[cfg.Provider]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown generator provider: %s", cfg.Provider)
	}
	return factory(cfg, opts)
}

// FromConfig builds the generator chain described by cfg: the primary
// provider, then the secondary when configured, wrapped in a FallbackGenerator.
func FromConfig(cfg *config.LLMConfig) (port.TestGenerator, error) {
	opts := Options{
		MaxTokens:     cfg.MaxTokens,
		Temperature:   cfg.Temperature,
		ContentTokens: cfg.ContentTokens,
	}

	primaryCfg := cfg.PrimaryConfig()
	primary, err := NewGenerator(primaryCfg, opts)
	if err != nil {
		return nil, fmt.Errorf("primary generator: %w", err)
	}
	gens := []port.TestGenerator{primary}
	names := []string{primaryCfg.Provider}

	if secondaryCfg := cfg.SecondaryConfig(); secondaryCfg != nil {
		secondary, err := NewGenerator(secondaryCfg, opts)
		if err != nil {
			return nil, fmt.Errorf("secondary generator: %w", err)
		}
		gens = append(gens, secondary)
		names = append(names, secondaryCfg.Provider)
	}

	return NewFallbackGenerator(gens, names), nil
}
