package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnnamedTool reports a registration attempt for a tool whose definition
// lacks a name.
var ErrUnnamedTool = errors.New("tool must have a name in its definition")

// Registry maps tool names to tools. It holds no per-turn state: Dispatch
// hands each call's sources back to the caller, so concurrent turns cannot
// observe one another's citations.
type Registry struct {
	mu    sync.Mutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool under its definition name. Registering a second tool
// with the same name replaces the first.
func (r *Registry) Register(tool Tool) error {
	def := tool.Definition()
	if def.Name == "" {
		return ErrUnnamedTool
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.tools[def.Name] = tool
	return nil
}

// Definitions returns every registered tool's definition in registration order.
func (r *Registry) Definitions() []Definition {
	r.mu.Lock()
	defer r.mu.Unlock()

	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Dispatch executes the named tool and returns its text and sources. An
// unknown name is reported in the returned text, not as an error: tool-call
// failures are data that must flow back to the LLM. A non-nil error comes
// from the tool itself and is fatal for the turn; no sources accompany it.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (string, []Source, error) {
	r.mu.Lock()
	tool, ok := r.tools[name]
	r.mu.Unlock()
	if !ok {
		return fmt.Sprintf("Tool '%s' not found", name), nil, nil
	}

	text, sources, err := tool.Execute(ctx, args)
	if err != nil {
		return "", nil, err
	}
	return text, sources, nil
}
