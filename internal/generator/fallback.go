package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"knowbase/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackGenerator tries generators in order, skipping those whose circuit
// is open after a rate limit. A region restriction from any provider ends the
// chain with canned questions.
type FallbackGenerator struct {
	gens     []port.TestGenerator
	circuits []*circuitState
	names    []string
	now      func() time.Time
}

// NewFallbackGenerator creates a FallbackGenerator from an ordered list of
// generators and their names.
func NewFallbackGenerator(gens []port.TestGenerator, names []string) *FallbackGenerator {
	circuits := make([]*circuitState, len(gens))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackGenerator{
		gens:     gens,
		circuits: circuits,
		names:    names,
		now:      time.Now,
	}
}

func (f *FallbackGenerator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, g := range f.gens {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("generator.FallbackGenerator: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := g.Generate(ctx, input)
		if err == nil {
			return out, nil
		}

		var regionErr *RegionRestrictedError
		if errors.As(err, &regionErr) {
			log.Printf("generator.FallbackGenerator: %s is region restricted, using canned questions", f.names[i])
			return NewMockGenerator().Generate(ctx, input)
		}

		log.Printf("generator.FallbackGenerator: %s failed: %v", f.names[i], err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all generators rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all generators failed: %w", lastErr)
}
