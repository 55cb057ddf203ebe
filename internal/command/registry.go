// Package command resolves named commands (object options, NPC talk, kill
// hooks) to registered handlers. Callers depend only on Handler; scripts
// register themselves by command name.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/udisondev/rsckernel/internal/model"
)

// Command names dispatched by the kernel.
const (
	OpLoc   = "oploc"   // object option clicked
	TalkNpc = "talknpc" // NPC talk option clicked
	KillNpc = "killnpc" // NPC died, before loot
)

// Args is the context of a dispatched command.
type Args struct {
	Target  model.ObjectID
	Command string // object command text ("open", "climb-up")
	Click   int32
}

// Handler processes a command. handled=false passes the command on to the
// next handler registered under the same name.
type Handler interface {
	Handle(ctx context.Context, actor model.ObjectID, args Args) (handled bool, err error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, actor model.ObjectID, args Args) (bool, error)

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, actor model.ObjectID, args Args) (bool, error) {
	return f(ctx, actor, args)
}

// Registry maps command names to handlers in registration order.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]Handler)}
}

// Register adds a handler for name. Names are case-insensitive.
func (r *Registry) Register(name string, h Handler) {
	if h == nil {
		return
	}
	key := strings.ToLower(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[key] = append(r.handlers[key], h)
}

// Has reports whether any handler is registered for name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[strings.ToLower(name)]) > 0
}

// Dispatch offers the command to each handler in order until one handles it.
// Returns false with nil error when nobody handled it.
func (r *Registry) Dispatch(ctx context.Context, actor model.ObjectID, name string, args Args) (bool, error) {
	key := strings.ToLower(name)

	r.mu.RLock()
	list := r.handlers[key]
	r.mu.RUnlock()

	for _, h := range list {
		handled, err := h.Handle(ctx, actor, args)
		if err != nil {
			return false, fmt.Errorf("dispatch %s: %w", key, err)
		}
		if handled {
			return true, nil
		}
	}

	slog.Debug("command not handled", "command", key, "actor", actor, "target", args.Target)
	return false, nil
}
