// Package permflow provides a stateful permission-edit workflow engine:
// a multi-step dialogue over an access-control subject's permission bits,
// with externally persisted edit sessions, before/after diff previews,
// authorization pre-checks, and a time-bounded single-use undo.
//
// The package is designed for stateless request-driven front ends: every
// Engine method handles one front-end event as a short-lived unit of work,
// and all in-progress state lives in the session store. Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// permflow is the public surface. It exposes [Engine], [Builder], [Config],
// the [Gateway] contract, and value types (Result, Diff, AuditEvent,
// MetricsSnapshot). All internal coordination — session and undo
// persistence, record encoding, id generation — lives under internal/ and
// is never exported. The permission vocabulary lives in the catalog
// subpackage.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or encoding details in its
//     public API.
//   - Render anything: every method returns a render-agnostic [Result]
//     that a presentation layer turns into UI.
//   - Hold locks across Gateway calls, or block one session on another.
package permflow
