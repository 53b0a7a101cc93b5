package services

import (
	"errors"

	"github.com/benmeehan/gps-ingestor/internal/metrics_collectors"
)

// ErrorKind classifies a failed submission.
type ErrorKind int

const (
	// KindValidation means the reading was rejected and nothing was stored.
	KindValidation ErrorKind = iota + 1
	// KindStorage means the reading was valid but the store refused it.
	KindStorage
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// IngestError is returned by LocationService for every rejected or failed submission.
type IngestError struct {
	Kind    ErrorKind
	Field   string // Offending input field, validation only
	Message string // Client facing message
	Err     error
}

func (e *IngestError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

func validationError(field, message string, err error) *IngestError {
	return &IngestError{Kind: KindValidation, Field: field, Message: message, Err: err}
}

// IsValidation reports whether err rejects the input rather than failing to store it.
func IsValidation(err error) bool {
	var ingestErr *IngestError
	return errors.As(err, &ingestErr) && ingestErr.Kind == KindValidation
}

// outcome maps a Submit result onto the submissions metric label.
func outcome(err error) string {
	switch {
	case err == nil:
		return metrics_collectors.OutcomeSaved
	case IsValidation(err):
		return metrics_collectors.OutcomeInvalid
	default:
		return metrics_collectors.OutcomeStorageError
	}
}
