// Package driving defines the inbound ports of the core: the operations
// the CLI (and any future transport) invokes.
package driving
