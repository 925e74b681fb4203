// Package memory provides in-memory adapter implementations: the keyword
// document index, the progress store, and the conversation store. They are
// the default backends and double as test fixtures for the services.
package memory
