package hook

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Handler processes one event. For before-events the returned HandlerResult
// may carry a parameter update or a cancellation; for after-events only the
// message is used.
type Handler func(p Payload) (HandlerResult, error)

// HandlerResult is a single handler's contribution to an emission.
type HandlerResult struct {
	// Message is shown to the user after the action, in handler order.
	Message string

	// Cancel aborts the underlying action (before-events only).
	Cancel bool

	// Reason explains a cancellation.
	Reason string

	// Update is merged into the event's mutable parameters before the next
	// handler runs (before-events with parameters only).
	Update map[string]any
}

// Result is the outcome of one emission.
type Result struct {
	// Messages from every handler that produced one, in registration order.
	Messages []string

	// Cancelled is true if a handler aborted the action.
	Cancelled bool

	// Reason is the cancelling handler's explanation.
	Reason string

	// Params is the final merged parameter set for before-events that carry
	// parameters; nil otherwise.
	Params map[string]any
}

type registration struct {
	id      string
	owner   string
	handler Handler
}

// Bus is the hook registry and dispatcher. Registration order per kind is
// emission order. Emission is synchronous and strictly sequential; the
// waterfall and cancellation semantics depend on it.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]registration
	log      *logrus.Logger
}

// NewBus creates an empty bus.
func NewBus(log *logrus.Logger) *Bus {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bus{
		handlers: make(map[Kind][]registration),
		log:      log,
	}
}

// On registers handler for kind and returns its registration id. The owner
// is the registering plugin's name; the host passes "".
func (b *Bus) On(kind Kind, handler Handler, owner string) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown event kind %q", kind)
	}
	if handler == nil {
		return "", fmt.Errorf("nil handler for event %q", kind)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	b.handlers[kind] = append(b.handlers[kind], registration{
		id:      id,
		owner:   owner,
		handler: handler,
	})
	return id, nil
}

// Off removes the registration with the given id from kind. It reports
// whether a registration was removed.
func (b *Bus) Off(kind Kind, id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.handlers[kind]
	for i, r := range regs {
		if r.id == id {
			b.handlers[kind] = append(regs[:i:i], regs[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAllForOwner removes every registration owned by the named plugin
// across all kinds. It returns the number removed.
func (b *Bus) RemoveAllForOwner(owner string) int {
	if owner == "" {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for kind, regs := range b.handlers {
		kept := regs[:0]
		for _, r := range regs {
			if r.owner == owner {
				removed++
				continue
			}
			kept = append(kept, r)
		}
		b.handlers[kind] = kept
	}
	return removed
}

// Count returns the number of handlers registered for kind.
func (b *Bus) Count(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[kind])
}

// Emit dispatches the payload to its kind's handlers, strictly sequentially
// in registration order. See the package comment for the waterfall,
// cancellation, and containment rules.
func (b *Bus) Emit(p Payload) Result {
	kind := p.EventKind()

	b.mu.RLock()
	regs := make([]registration, len(b.handlers[kind]))
	copy(regs, b.handlers[kind])
	b.mu.RUnlock()

	var res Result
	wf, waterfall := p.(Waterfaller)
	if waterfall {
		res.Params = wf.Params()
	}

	for _, reg := range regs {
		hr, err := b.invoke(reg, p)
		if err != nil {
			// Contained at the single-handler boundary: no message, no
			// cancellation, no parameter change.
			b.log.WithFields(logrus.Fields{
				"event":  kind,
				"plugin": reg.owner,
			}).WithError(err).Warn("hook handler failed")
			continue
		}

		if hr.Message != "" {
			res.Messages = append(res.Messages, hr.Message)
		}

		if waterfall && len(hr.Update) > 0 {
			for k, v := range hr.Update {
				res.Params[k] = v
			}
		}

		if hr.Cancel {
			if !kind.Before() {
				b.log.WithFields(logrus.Fields{
					"event":  kind,
					"plugin": reg.owner,
				}).Debug("cancellation ignored for after-event")
				continue
			}
			res.Cancelled = true
			res.Reason = hr.Reason
			break
		}
	}

	return res
}

// invoke runs one handler with panic containment.
func (b *Bus) invoke(reg registration, p Payload) (hr HandlerResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook handler panic: %v", r)
		}
	}()
	return reg.handler(p)
}
