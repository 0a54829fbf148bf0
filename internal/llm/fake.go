// internal/llm/fake.go
package llm

import (
	"context"
	"sync"

	"eam-assistant/internal/prompt"
)

// Fake is a scripted Completer for tests. Fn decides each answer; Calls
// records every prompt and temperature it was given.
type Fake struct {
	Fn func(p *prompt.Rendered) (string, error)

	mu    sync.Mutex
	Calls []FakeCall
}

type FakeCall struct {
	Prompt      *prompt.Rendered
	Temperature *float64
}

func (f *Fake) Complete(_ context.Context, p *prompt.Rendered, opts ...CallOption) (string, error) {
	co := callOptions{}
	for _, opt := range opts {
		opt(&co)
	}

	f.mu.Lock()
	f.Calls = append(f.Calls, FakeCall{Prompt: p, Temperature: co.temperature})
	f.mu.Unlock()

	if f.Fn == nil {
		return "", nil
	}
	return f.Fn(p)
}

func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}
