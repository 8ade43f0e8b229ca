package vdom

import "strings"

// event creates an EventHandler with the given name and handler.
// The name is prefixed with "on" (e.g., "click" becomes "onclick").
func event(name string, handler any) EventHandler {
	return EventHandler{Event: EventProp(name), Handler: handler}
}

// EventProp returns the prop key under which a handler for event is stored.
func EventProp(event string) string {
	return "on" + strings.ToLower(event)
}

// On handles an arbitrary event, including component-emitted events.
func On(name string, handler any) EventHandler { return event(name, handler) }

// OnClick handles click events.
func OnClick(handler any) EventHandler { return event("click", handler) }

// OnInput handles input events (fired when value changes).
func OnInput(handler any) EventHandler { return event("input", handler) }
