// Package service contains the application use cases. It owns the
// per-identity Workspace (the stats snapshot plus its session machine), the
// PersistenceGateway that loads and saves snapshots, and the feature
// services (planner, shop, preferences, mentor, progress) that turn requests
// into pure aggregate mutations.
//
// Services never touch storage directly: every change goes through
// Workspace.Apply, which replaces the snapshot and queues a save.
package service
