// Package errors provides structured, coded error handling for the server.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unclassified error.
	CodeUnknown Code = "UNKNOWN"

	// CodeValidation signals a bad or missing argument rejected before the
	// handler ran.
	CodeValidation Code = "VALIDATION"

	// CodeNotFound signals an entity absent at the directory.
	CodeNotFound Code = "NOT_FOUND"

	// CodeCapabilityUnsupported signals a filter operator the directory
	// backend does not honor.
	CodeCapabilityUnsupported Code = "CAPABILITY_UNSUPPORTED"

	// CodeTransport signals a generic remote directory failure.
	CodeTransport Code = "TRANSPORT"
)
