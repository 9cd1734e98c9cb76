// Package stores holds the key-value persistence behind the workflow
// engine: the edit-session store and the undo cache. Each store has a
// Redis-backed implementation for multi-process deployments and an
// in-memory implementation with a TTL reaper for single-process use and
// tests. The workflow engine depends only on the interfaces and must not
// assume a particular backing store.
package stores
