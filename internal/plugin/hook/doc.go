// Package hook implements the typed event bus that connects host actions to
// plugin handlers.
//
// Events come in two classes. Before-events fire ahead of a host action:
// handlers run strictly sequentially in registration order, each may return a
// partial update that is merged into the event's mutable parameters before the
// next handler runs (the waterfall), and any handler may cancel the action
// with a reason, which stops emission immediately. After-events are purely
// observational.
//
// A handler that returns an error or panics is contained at its own boundary:
// it contributes no message, no cancellation, and no parameter change, and the
// rest of the chain still runs.
package hook
