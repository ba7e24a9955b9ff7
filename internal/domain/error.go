package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeConfig          ErrorCode = "CONFIG"
	CodeUpstreamTimeout ErrorCode = "UPSTREAM_TIMEOUT"
	CodeUpstreamHTTP    ErrorCode = "UPSTREAM_HTTP"
	CodeUpstreamParse   ErrorCode = "UPSTREAM_PARSE"
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeInternal        ErrorCode = "INTERNAL"
)

type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
	// StatusCode carries the upstream HTTP status for CodeUpstreamHTTP.
	StatusCode int
	// Body carries a truncated upstream response body for diagnostics.
	Body string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		return &Error{
			Code:       existing.Code,
			Op:         op,
			Message:    existing.Message,
			Cause:      existing.Cause,
			StatusCode: existing.StatusCode,
			Body:       existing.Body,
		}
	}
	return E(code, op, "", err)
}

// CodeFrom extracts the error code, if any, from an error chain.
func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	return "", false
}

// IsRecoverable reports whether the error is an upstream failure the cache
// layer absorbs into a degraded response rather than propagating.
func IsRecoverable(err error) bool {
	code, ok := CodeFrom(err)
	if !ok {
		return false
	}
	switch code {
	case CodeUpstreamTimeout, CodeUpstreamHTTP, CodeUpstreamParse:
		return true
	default:
		return false
	}
}
