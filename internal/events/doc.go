// Package events provides types and interfaces for an event-driven architecture.
//
// The session state machine and the persistence gateway publish events here
// without knowing who consumes them. Handlers record metrics and audit logs.
//
// The primary components are:
// - Event: something that happened to one identity's stats aggregate
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
