// Package task runs background work on a bounded in-memory queue. Snapshot
// saves are submitted here so that HTTP handlers and the session tick never
// wait on storage.
package task
