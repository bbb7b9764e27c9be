package contract

import (
	"context"
	"reflect"
)

// EventSink is a live connection handle able to push one outbound
// protocol event to a client. Implementations must be safe for
// concurrent use: the router, the broadcaster, and the connection's
// own handler may all write to the same sink.
type EventSink interface {
	Send(ctx context.Context, event any) error
}

// ISessionRegistry is the sole source of truth for "who is online".
type ISessionRegistry interface {
	// Put registers or replaces the live sink for an identity. It
	// returns the replaced sink, if any, so the caller can notify the
	// superseded connection of the takeover.
	Put(identityID string, sink EventSink) (EventSink, bool)
	// Remove deletes the entry; no-op if absent.
	Remove(identityID string)
	// Release removes the entry only if it still points at the given
	// sink. A connection closing after a takeover must not evict the
	// session that replaced it.
	Release(identityID string, sink EventSink)
	Get(identityID string) (EventSink, bool)
	IsOnline(identityID string) bool
	// All returns a snapshot of the current sessions.
	All() map[string]EventSink
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
