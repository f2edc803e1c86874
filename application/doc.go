// Package application provides the shared executable-level
// plumbing of session-android-service: configuration loading and
// saving, the zap-based logger, and the JSON encoding of the
// devicemapping annotation payloads exchanged with the directory.
package application
