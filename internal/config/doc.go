// Package config loads server settings from defaults, an optional
// config.yaml and FOCUS_* environment variables, and validates them before
// anything is wired.
package config
