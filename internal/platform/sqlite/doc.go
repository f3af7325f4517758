// Package sqlite stores the anonymous on-device stats snapshot in a single
// SQLite file. Each storage key maps to one raw JSON document.
package sqlite
