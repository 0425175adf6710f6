// Package testutil provides stub capabilities for tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
)

// StubEmbedder returns canned vectors keyed by input text.
type StubEmbedder struct {
	Model   string
	Vectors map[string][]float64
	Default []float64
	Err     error

	calls atomic.Int64
}

// Name returns the stub model identity.
func (e *StubEmbedder) Name() string { return e.Model }

// Embed returns the canned vector for text, or Default when no exact match
// is registered.
func (e *StubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	e.calls.Add(1)
	if e.Err != nil {
		return nil, e.Err
	}
	if v, ok := e.Vectors[text]; ok {
		return v, nil
	}
	if e.Default != nil {
		return e.Default, nil
	}
	return nil, fmt.Errorf("no stub vector for %q", text)
}

// Calls reports how many times Embed was invoked.
func (e *StubEmbedder) Calls() int { return int(e.calls.Load()) }

// StubGenerator records prompts and returns a fixed reply.
type StubGenerator struct {
	Reply string
	Err   error

	calls       atomic.Int64
	LastPrompt  string
	HadDeadline bool
}

// Name returns the stub model identity.
func (g *StubGenerator) Name() string { return "stub-generator" }

// Generate records the call and returns the canned reply or error.
func (g *StubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls.Add(1)
	g.LastPrompt = prompt
	_, g.HadDeadline = ctx.Deadline()
	if g.Err != nil {
		return "", g.Err
	}
	return g.Reply, nil
}

// Calls reports how many times Generate was invoked.
func (g *StubGenerator) Calls() int { return int(g.calls.Load()) }
