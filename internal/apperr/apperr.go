// Package apperr defines the error taxonomy shared by the ingestion pipeline,
// the query engine and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by every domain error.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeNotFound           = "NOT_FOUND"
	CodeConflictLost       = "CONFLICT_LOST"
	CodeConflict           = "CONFLICT"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
	CodeInternal           = "INTERNAL"
)

// InvalidInput reports bad pagination, malformed dates or an invalid upload.
func InvalidInput(format string, args ...any) *goerrors.Error {
	return goerrors.New(fmt.Sprintf(format, args...), goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(CodeInvalidInput)
}

// NotFound reports a missing record or an unavailable collection.
func NotFound(format string, args ...any) *goerrors.Error {
	return goerrors.New(fmt.Sprintf(format, args...), goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(CodeNotFound)
}

// ConflictLost reports an update whose target vanished between read and write.
func ConflictLost(format string, args ...any) *goerrors.Error {
	return goerrors.New(fmt.Sprintf(format, args...), goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(CodeConflictLost)
}

// Conflict reports a write rejected by a uniqueness constraint.
func Conflict(err error, format string, args ...any) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryConflict, fmt.Sprintf(format, args...)).
		WithCode(http.StatusConflict).
		WithTextCode(CodeConflict)
}

// PersistenceFailure wraps a failed commit or an unresolvable write conflict.
func PersistenceFailure(err error, format string, args ...any) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf(format, args...)).
		WithCode(http.StatusInternalServerError).
		WithTextCode(CodePersistenceFailure)
}

// TextCode returns the text code of err, or CodeInternal for unclassified errors.
func TextCode(err error) string {
	var e *goerrors.Error
	if errors.As(err, &e) && e.TextCode != "" {
		return e.TextCode
	}
	return CodeInternal
}

// Known reports whether err carries one of the text codes defined here.
func Known(err error) bool {
	switch TextCode(err) {
	case CodeInvalidInput, CodeNotFound, CodeConflictLost, CodeConflict, CodePersistenceFailure:
		return true
	}
	return false
}

// Is reports whether err carries the given text code.
func Is(err error, code string) bool {
	var e *goerrors.Error
	return errors.As(err, &e) && e.TextCode == code
}

// HTTPStatus maps err onto a response status. Unclassified errors are 500.
func HTTPStatus(err error) int {
	var e *goerrors.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}

	switch e.Category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Message returns the client facing message for err. Details of unclassified
// errors are not exposed.
func Message(err error) string {
	var e *goerrors.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal error"
}
