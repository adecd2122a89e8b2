// Package errors holds the coded errors shared by discovery, config and
// the app. Codes are stable strings; JSON output and CLI handling key off
// them.
package errors

import (
	"errors"
	"io/fs"
	"sort"
	"strings"
)

type ErrorCode string

const (
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationError  ErrorCode = "VALIDATION_ERROR"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
)

// Context keys.
const (
	CtxPath     = "path"
	CtxPackage  = "package"
	CtxManifest = "manifest"
)

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]string
}

// Error renders "[CODE] message: cause (k=v, ...)" with keys sorted.
func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString("[" + string(e.Code) + "] " + e.Message)
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k + "=" + e.Context[k])
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// FromFS wraps a filesystem error with the code matching its cause:
// missing paths are NOT_FOUND, permission failures PERMISSION_DENIED.
func FromFS(err error, msg string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Wrap(err, CodeNotFound, msg)
	case errors.Is(err, fs.ErrPermission):
		return Wrap(err, CodePermissionDenied, msg)
	default:
		return Wrap(err, CodeInternal, msg)
	}
}

// AddContext attaches key=value to the outermost DomainError in err's
// chain, wrapping err as INTERNAL_ERROR when there is none.
func AddContext(err error, key, value string) error {
	var de *DomainError
	if !errors.As(err, &de) {
		de = &DomainError{Code: CodeInternal, Message: "unexpected error", Err: err}
		err = de
	}
	if de.Context == nil {
		de.Context = make(map[string]string)
	}
	de.Context[key] = value
	return err
}

// CodeOf returns the code of the first DomainError in err's chain. Errors
// without one are INTERNAL_ERROR; nil has no code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// ContextValue returns the value stored under key anywhere in err's chain.
func ContextValue(err error, key string) (string, bool) {
	for err != nil {
		if de, ok := err.(*DomainError); ok {
			if v, ok := de.Context[key]; ok {
				return v, true
			}
		}
		err = errors.Unwrap(err)
	}
	return "", false
}
