// Package domain contains the core business entities and rules for the
// adaptive learning pipeline. Types here have no dependencies on adapters
// or external services.
package domain
