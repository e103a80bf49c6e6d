package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeExtract represents row-source extraction errors
	ErrorTypeExtract ErrorType = "extract"
	// ErrorTypeNormalize represents entity normalization errors
	ErrorTypeNormalize ErrorType = "normalize"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeDerive represents derived-graph computation errors
	ErrorTypeDerive ErrorType = "derive"
	// ErrorTypeCheckpoint represents chunk checkpoint I/O errors
	ErrorTypeCheckpoint ErrorType = "checkpoint"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Extraction Errors

// ErrSourceConnectionFailed is returned when the source database is unreachable
type ErrSourceConnectionFailed struct {
	*BaseError
	Platform string
}

func NewSourceConnectionFailed(platform string, err error) *ErrSourceConnectionFailed {
	return &ErrSourceConnectionFailed{
		BaseError: NewBaseError(ErrorTypeExtract, fmt.Sprintf("failed to connect to source database: %s", platform), err),
		Platform:  platform,
	}
}

// ErrSourceQueryFailed is returned when a catalog query fails or a row
// cannot be scanned. Fatal for the whole source per the extraction contract.
type ErrSourceQueryFailed struct {
	*BaseError
	Platform string
	Query    string
}

func NewSourceQueryFailed(platform, query string, err error) *ErrSourceQueryFailed {
	return &ErrSourceQueryFailed{
		BaseError: NewBaseError(ErrorTypeExtract, fmt.Sprintf("query %q failed on %s", query, platform), err),
		Platform:  platform,
		Query:     query,
	}
}

// Normalization Errors

// ErrMissingSiteURL is returned when the site settings row is absent
type ErrMissingSiteURL struct {
	*BaseError
	Platform string
}

func NewMissingSiteURL(platform string) *ErrMissingSiteURL {
	return &ErrMissingSiteURL{
		BaseError: NewBaseError(ErrorTypeNormalize, fmt.Sprintf("no site url setting found for %s", platform), nil),
		Platform:  platform,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrBatchLoadFailed identifies exactly which chunk of which entity type
// on which platform failed to load, so a run can be diagnosed afterwards.
type ErrBatchLoadFailed struct {
	*BaseError
	Platform string
	Entity   string
	Chunk    int
}

func NewBatchLoadFailed(platform, entity string, chunk int, err error) *ErrBatchLoadFailed {
	return &ErrBatchLoadFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("load failed for %s on %s, chunk #%d", entity, platform, chunk), err),
		Platform:  platform,
		Entity:    entity,
		Chunk:     chunk,
	}
}

// ErrIndexCreationFailed is returned when an index cannot be ensured before loading
type ErrIndexCreationFailed struct {
	*BaseError
	Index string
}

func NewIndexCreationFailed(index string, err error) *ErrIndexCreationFailed {
	return &ErrIndexCreationFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to create index: %s", index), err),
		Index:     index,
	}
}

// Derivation Errors

// ErrDerivationFailed is returned when one derived-graph step fails.
// Other steps keep running.
type ErrDerivationFailed struct {
	*BaseError
	Step     string
	Platform string
}

func NewDerivationFailed(step, platform string, err error) *ErrDerivationFailed {
	return &ErrDerivationFailed{
		BaseError: NewBaseError(ErrorTypeDerive, fmt.Sprintf("derivation step %s failed on %s", step, platform), err),
		Step:      step,
		Platform:  platform,
	}
}

// Checkpoint Errors

// ErrCheckpointWriteFailed is returned when a chunk file cannot be written
type ErrCheckpointWriteFailed struct {
	*BaseError
	Path string
}

func NewCheckpointWriteFailed(path string, err error) *ErrCheckpointWriteFailed {
	return &ErrCheckpointWriteFailed{
		BaseError: NewBaseError(ErrorTypeCheckpoint, fmt.Sprintf("failed to write checkpoint: %s", path), err),
		Path:      path,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

type typed interface {
	errorType() ErrorType
}

func (e *BaseError) errorType() ErrorType { return e.Type }

// IsErrorType checks if an error is of a specific type. Types embedding
// BaseError are matched through the promoted method.
func IsErrorType(err error, errType ErrorType) bool {
	if t, ok := err.(typed); ok {
		return t.errorType() == errType
	}
	if wrapped, ok := err.(interface{ Unwrap() error }); ok {
		inner := wrapped.Unwrap()
		if inner != nil {
			return IsErrorType(inner, errType)
		}
	}
	return false
}

// IsFatal reports whether an error must abort the current source.
// Extraction and normalization errors are fatal; batch load and derivation
// errors are logged and skipped.
func IsFatal(err error) bool {
	return IsErrorType(err, ErrorTypeExtract) || IsErrorType(err, ErrorTypeNormalize)
}
