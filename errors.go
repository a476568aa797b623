package purc

import (
	"errors"
	"fmt"
)

// Code identifies an error condition raised by the runtime.
type Code int

const (
	OK Code = iota
	ErrOutOfMemory
	ErrInvalidValue
	ErrWrongDataType
	ErrArgumentMissed
	ErrNotSupported
	ErrNotFound
	ErrDuplicated
	ErrOutOfBounds
	ErrInvalidOperand
	ErrBadEncoding
	ErrUnexpectedEOF
	ErrUnexpectedCharacter
	ErrUnexpectedComma
	ErrUnexpectedRightBrace
	ErrUnexpectedRightBracket
	ErrMaxDepthExceeded
	ErrNotImplemented
	ErrObserverVeto
)

var codeNames = map[Code]string{
	OK:                        "ok",
	ErrOutOfMemory:            "out of memory",
	ErrInvalidValue:           "invalid value",
	ErrWrongDataType:          "wrong data type",
	ErrArgumentMissed:         "argument missed",
	ErrNotSupported:           "not supported",
	ErrNotFound:               "not found",
	ErrDuplicated:             "duplicated",
	ErrOutOfBounds:            "out of bounds",
	ErrInvalidOperand:         "invalid operand",
	ErrBadEncoding:            "bad encoding",
	ErrUnexpectedEOF:          "unexpected eof",
	ErrUnexpectedCharacter:    "unexpected character",
	ErrUnexpectedComma:        "unexpected comma",
	ErrUnexpectedRightBrace:   "unexpected right brace",
	ErrUnexpectedRightBracket: "unexpected right bracket",
	ErrMaxDepthExceeded:       "max depth exceeded",
	ErrNotImplemented:         "not implemented",
	ErrObserverVeto:           "rejected by observer",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("error %d", int(c))
}

// Error is the error type returned by every fallible runtime operation.
// Tokenizer errors carry the source position of the offending character.
type Error struct {
	Code      Code
	Line      int
	Column    int
	Character rune
	Detail    string
}

func (e *Error) Error() string {
	msg := e.Code.String()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d, column %d near %q", msg, e.Line, e.Column, string(e.Character))
	}
	return msg
}

// NewError creates an Error without position information.
func NewError(code Code) *Error {
	return &Error{Code: code}
}

// Errorf creates an Error with a formatted detail message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the Code from err, or OK for nil and ErrInvalidValue for
// foreign errors.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ErrInvalidValue
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
