package errdef

import (
	"errors"
	"fmt"
	"strings"
)

type Code string

const (
	CodeUnknown    Code = "unknown"
	CodeHTTP       Code = "http"
	CodeParse      Code = "parse"
	CodeConfig     Code = "config"
	CodeFilesystem Code = "filesystem"
)

// Error carries a coarse failure code next to the human message so callers
// can pick a status level without string matching.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message == "" && e.Err != nil:
		return e.Err.Error()
	case e.Err == nil:
		return e.Message
	default:
		return e.Message + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the outermost code attached to err.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) && coded.Code != "" {
		return coded.Code
	}
	return CodeUnknown
}

// Message renders err without the wrapping prefixes of intermediate layers
// when the innermost cause already explains the failure.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var coded *Error
	if errors.As(err, &coded) {
		return strings.TrimSpace(coded.Error())
	}
	return strings.TrimSpace(err.Error())
}
