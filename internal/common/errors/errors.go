// Package errors provides standardized error handling for scoring workers and
// their BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Scoring engine errors. Every one of them means the bundle or its
// configuration is malformed, so none is ever retried.
const (
	ErrCodeInvalidRange       ErrorCode = "INVALID_RANGE"
	ErrCodeNotAllowed         ErrorCode = "NOT_ALLOWED"
	ErrCodeForeignReference   ErrorCode = "FOREIGN_REFERENCE"
	ErrCodeEmptyConfiguration ErrorCode = "EMPTY_CONFIGURATION"
	ErrCodeInvalidConfig      ErrorCode = "INVALID_CONFIG"
)

// Record store, cache and job plumbing errors.
const (
	ErrCodeSessionNotFound       ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeResultNotFound        ErrorCode = "RESULT_NOT_FOUND"
	ErrCodeResultAlreadyExists   ErrorCode = "RESULT_ALREADY_EXISTS"
	ErrCodeVersionNotFound       ErrorCode = "VERSION_NOT_FOUND"
	ErrCodeDatabaseConnection    ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed  ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout          ErrorCode = "QUERY_TIMEOUT"
	ErrCodeCacheFailure          ErrorCode = "CACHE_FAILURE"
	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"
	ErrCodeParseError            ErrorCode = "PARSE_ERROR"
	ErrCodeWorkflowEngine        ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
}

// Unwrap exposes the underlying driver or client error, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRangeError reports a degenerate scale or an answer outside it.
func NewInvalidRangeError(details string) *StandardError {
	return newError(ErrCodeInvalidRange, "Value outside the permitted range", details, false)
}

// NewNotAllowedError reports an answer the question does not accept, such as N/A
// on a question that disallows it.
func NewNotAllowedError(details string) *StandardError {
	return newError(ErrCodeNotAllowed, "Answer not allowed for question", details, false)
}

// NewForeignReferenceError reports an id that does not resolve inside the
// questionnaire version being scored.
func NewForeignReferenceError(details string) *StandardError {
	return newError(ErrCodeForeignReference, "Reference outside questionnaire version", details, false)
}

// NewEmptyConfigurationError reports a bundle with nothing to aggregate.
func NewEmptyConfigurationError(details string) *StandardError {
	return newError(ErrCodeEmptyConfiguration, "Empty scoring configuration", details, false)
}

// NewInvalidConfigError reports a malformed scoring configuration record.
func NewInvalidConfigError(details string) *StandardError {
	return newError(ErrCodeInvalidConfig, "Invalid scoring configuration", details, false)
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return newError(ErrCodeSessionNotFound, "Response session not found",
		fmt.Sprintf("sessionId: %s", sessionID), false)
}

func NewResultNotFoundError(sessionID string) *StandardError {
	return newError(ErrCodeResultNotFound, "Score result not found",
		fmt.Sprintf("sessionId: %s", sessionID), false)
}

// NewResultAlreadyExistsError is returned when a session already holds its
// immutable score result.
func NewResultAlreadyExistsError(sessionID string) *StandardError {
	return newError(ErrCodeResultAlreadyExists, "Score result already recorded",
		fmt.Sprintf("sessionId: %s", sessionID), false)
}

func NewVersionNotFoundError(details string) *StandardError {
	return newError(ErrCodeVersionNotFound, "Questionnaire version not found", details, false)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	e := newError(ErrCodeDatabaseConnection, "Database connection error", err.Error(), true)
	e.cause = err
	return e
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(query string, err error) *StandardError {
	e := newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("query: %s, error: %s", query, err.Error()), true)
	e.cause = err
	return e
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(query string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout",
		fmt.Sprintf("query: %s", query), true)
}

// NewCacheFailureError wraps a result cache error. Callers log it and carry on.
func NewCacheFailureError(op string, err error) *StandardError {
	e := newError(ErrCodeCacheFailure, "Result cache operation failed",
		fmt.Sprintf("op: %s, error: %s", op, err.Error()), true)
	e.cause = err
	return e
}

func NewInputValidationFailedError(details string) *StandardError {
	return newError(ErrCodeInputValidationFailed, "Job input failed schema validation", details, false)
}

// NewWorkflowEngineError wraps a failed Zeebe gateway call.
func NewWorkflowEngineError(operation string, err error, retryable bool) *StandardError {
	e := newError(ErrCodeWorkflowEngine, "Workflow engine request failed",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), retryable)
	e.cause = err
	return e
}

// NewInternalError reports a broken invariant inside the service, such as a
// stored record missing its payload.
func NewInternalError(details string, err error) *StandardError {
	e := newError(ErrCodeInternal, "Internal error", details, false)
	e.cause = err
	return e
}

func NewParseError(err error) *StandardError {
	e := newError(ErrCodeParseError, "Job variables could not be parsed", err.Error(), false)
	e.cause = err
	return e
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. Codes that
// are absent map to themselves.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidRange:          "SCORING_INPUT_INVALID",
	ErrCodeNotAllowed:            "SCORING_INPUT_INVALID",
	ErrCodeForeignReference:      "SCORING_CONFIG_INVALID",
	ErrCodeEmptyConfiguration:    "SCORING_CONFIG_INVALID",
	ErrCodeInvalidConfig:         "SCORING_CONFIG_INVALID",
	ErrCodeSessionNotFound:       "SESSION_NOT_FOUND",
	ErrCodeResultNotFound:        "RESULT_NOT_FOUND",
	ErrCodeResultAlreadyExists:   "RESULT_ALREADY_EXISTS",
	ErrCodeInputValidationFailed: "INPUT_VALIDATION_FAILED",
	ErrCodeParseError:            "INPUT_VALIDATION_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnection,
		ErrCodeQueryExecutionFailed,
		ErrCodeWorkflowEngine:
		return 3
	case ErrCodeQueryTimeout:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandard unwraps err to a *StandardError if one is in its chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first StandardError in err's chain, or
// ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeInvalidRange, ErrCodeNotAllowed:
		return "SCORING_INPUT"
	case ErrCodeForeignReference, ErrCodeEmptyConfiguration, ErrCodeInvalidConfig:
		return "SCORING_CONFIG"
	case ErrCodeCacheFailure:
		return "CACHE"
	}

	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.HasSuffix(codeStr, "NOT_FOUND") || strings.HasSuffix(codeStr, "ALREADY_EXISTS"):
		return "RECORD"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	default:
		return "INTERNAL"
	}
}
