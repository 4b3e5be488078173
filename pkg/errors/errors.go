// Package errors carries coded errors from the services to the transport.
// A code fixes the HTTP status, whether a retry can help and whether the
// message was written for the person on the other end of the chat.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeStateConflict     Code = "STATE_CONFLICT"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodeRateLimit         Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal          Code = "INTERNAL_ERROR"
	CodeDependency        Code = "DEPENDENCY_ERROR"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
	// CustomerSafe marks codes whose own message may be shown verbatim.
	CustomerSafe bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:        {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed", DetailsAllowed: true, CustomerSafe: true},
	CodeNotFound:          {HTTPStatus: http.StatusNotFound, PublicMessage: "resource not found", CustomerSafe: true},
	CodeConflict:          {HTTPStatus: http.StatusConflict, PublicMessage: "conflict detected", CustomerSafe: true},
	CodeStateConflict:     {HTTPStatus: http.StatusUnprocessableEntity, PublicMessage: "state transition disallowed", DetailsAllowed: true, CustomerSafe: true},
	CodeInsufficientStock: {HTTPStatus: http.StatusConflict, PublicMessage: "insufficient stock", DetailsAllowed: true, CustomerSafe: true},
	CodeRateLimit:         {HTTPStatus: http.StatusTooManyRequests, PublicMessage: "rate limit exceeded", CustomerSafe: true},
	CodeInternal:          {HTTPStatus: http.StatusInternalServerError, Retryable: true, PublicMessage: "internal server error"},
	CodeDependency:        {HTTPStatus: http.StatusServiceUnavailable, Retryable: true, PublicMessage: "dependency unavailable", DetailsAllowed: true},
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// IsCode reports whether the outermost coded error in err's chain has code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// PublicMessage is the text safe to hand back to a caller: the error's own
// message for customer-safe codes, the code's generic message otherwise.
func PublicMessage(err error) string {
	typed := As(err)
	if typed == nil {
		return MetadataFor(CodeInternal).PublicMessage
	}
	meta := MetadataFor(typed.code)
	if meta.CustomerSafe && typed.message != "" {
		return typed.message
	}
	return meta.PublicMessage
}
