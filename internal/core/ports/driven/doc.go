// Package driven defines the outbound ports of the core: contracts the
// core depends on and adapters implement. The retrieval backend, the
// transcription and OCR engines, and the persistence stores all live
// behind interfaces declared here.
package driven
