package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no parser is registered for a file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrTranscriptionUnavailable indicates the transcription engine is not
	// configured. Video and audio ingestion is disabled without it.
	ErrTranscriptionUnavailable = errors.New("transcription engine unavailable")

	// ErrOCRUnavailable indicates the OCR engine is not configured.
	// Image ingestion is disabled without it.
	ErrOCRUnavailable = errors.New("OCR engine unavailable")

	// ErrRerankerUnavailable indicates the personalized reranker is not
	// configured. Retrieval falls back to native ordering.
	ErrRerankerUnavailable = errors.New("reranker unavailable")

	// ErrIndexUnavailable indicates the retrieval backend is not configured.
	ErrIndexUnavailable = errors.New("document index unavailable")
)
