// Package cimerrors defines the error taxonomy shared by every component
// of the content-addressed storage engine.
package cimerrors

import (
	"errors"
	"fmt"
)

// Code identifies a taxonomy entry. Callers should pattern-match on Code
// rather than on error strings.
type Code string

const (
	NotFound              Code = "NOT_FOUND"
	CidMismatch           Code = "CID_MISMATCH"
	FormatMismatch        Code = "FORMAT_MISMATCH"
	InvalidContent        Code = "INVALID_CONTENT"
	CodecUnknown          Code = "CODEC_UNKNOWN"
	CodecConflict         Code = "CODEC_CONFLICT"
	ChainValidation       Code = "CHAIN_VALIDATION"
	ChainLoad             Code = "CHAIN_LOAD"
	CanonicalizationError Code = "CANONICALIZATION_ERROR"
	StorageError          Code = "STORAGE_ERROR"
	DecryptionError       Code = "DECRYPTION_ERROR"
	KeyRotation           Code = "KEY_ROTATION"
	QuotaExceeded         Code = "QUOTA_EXCEEDED"
	Cancelled             Code = "CANCELLED"
	HashError             Code = "HASH_ERROR"
	InvalidCID            Code = "INVALID_CID"
)

// StorageKind subclassifies StorageError per spec §4.E / §7.
type StorageKind string

const (
	Transient        StorageKind = "TRANSIENT"
	Unavailable      StorageKind = "UNAVAILABLE"
	QuotaExceededKnd StorageKind = "QUOTA_EXCEEDED"
	PermissionDenied StorageKind = "PERMISSION_DENIED"
	Fatal            StorageKind = "FATAL"
)

// CodedError is a stable error carrying a taxonomy code, a human message,
// and an optional wrapped cause. It supports errors.Is/errors.As through
// Unwrap.
type CodedError struct {
	Code    Code
	Message string
	Cause   error

	// Kind further classifies StorageError (spec §4.E).
	Kind StorageKind

	// Fields used by forensic reporting (spec §7): CidMismatch reports
	// Expected/Actual; ChainValidation reports Sequence/Expected/Actual.
	Expected string
	Actual   string
	Sequence int
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *CodedError) Unwrap() error { return e.Cause }

// Is reports whether target has the same Code, matching the teacher's
// model.CodedError comparison idiom but extended to distinguish taxonomy
// entries rather than exact struct equality.
func (e *CodedError) Is(target error) bool {
	var other *CodedError
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

// New constructs a CodedError with no wrapped cause.
func New(code Code, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// Wrap constructs a CodedError wrapping cause.
func Wrap(code Code, message string, cause error) *CodedError {
	return &CodedError{Code: code, Message: message, Cause: cause}
}

// NewStorageError builds a StorageError with a subkind.
func NewStorageError(kind StorageKind, message string, cause error) *CodedError {
	return &CodedError{Code: StorageError, Kind: kind, Message: message, Cause: cause}
}

// NewCidMismatch builds a CidMismatch error carrying both CIDs for
// forensic reporting, per spec §7.
func NewCidMismatch(expected, actual string) *CodedError {
	return &CodedError{
		Code:     CidMismatch,
		Message:  "recomputed CID does not match requested CID",
		Expected: expected,
		Actual:   actual,
	}
}

// NewChainValidation builds a ChainValidation error reporting the
// offending sequence index, per spec §7.
func NewChainValidation(sequence int, expected, actual string) *CodedError {
	return &CodedError{
		Code:     ChainValidation,
		Message:  fmt.Sprintf("chain validation failed at sequence %d", sequence),
		Sequence: sequence,
		Expected: expected,
		Actual:   actual,
	}
}

// HasCode reports whether err (or something it wraps) is a *CodedError
// with that code.
func HasCode(err error, code Code) bool {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// IsNotFound mirrors the teacher's storage.IsNotFound helper.
func IsNotFound(err error) bool { return HasCode(err, NotFound) }
