// Package parsers provides the file-type parser registry and the shared
// command runner. Concrete parsers live in subpackages, one per media
// family.
package parsers
