// Package cache provides a Redis write-through decorator for remote stats
// snapshots. Redis is never authoritative: a cache failure falls through to
// the wrapped store.
package cache
