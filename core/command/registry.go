package command

import "fmt"

// Registry maps command names to handlers. Lookup is an exact, case-sensitive
// match and registration order is preserved so error messages and listings are
// deterministic. Adding a command is only a Register call; dispatch logic
// stays command-agnostic.
type Registry struct {
	handlers map[string]Handler
	order    []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler under the given command name. Registering the same
// name twice is a wiring bug and returns an error.
func (r *Registry) Register(name string, h Handler) error {
	if name == "" {
		return fmt.Errorf("command name is required")
	}
	if h == nil {
		return fmt.Errorf("nil handler for command %s", name)
	}
	if _, ok := r.handlers[name]; ok {
		return fmt.Errorf("command %s already registered", name)
	}
	r.handlers[name] = h
	r.order = append(r.order, name)
	return nil
}

// Resolve returns the handler for the command, or an UnknownCommandError
// listing the registered commands.
func (r *Registry) Resolve(name string) (Handler, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, &UnknownCommandError{Command: name, Registered: r.Commands()}
	}
	return h, nil
}

// Commands returns the registered command names in registration order.
func (r *Registry) Commands() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
