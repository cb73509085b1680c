// Package mjerrors defines the typed error taxonomy shared across the
// dispatcher, aggregator, broker, chat session, and solvers.
package mjerrors

import (
	"errors"
	"fmt"
)

// Kind classifies an Error into one of the categories callers can
// pattern-match against instead of parsing a message string.
type Kind string

const (
	KindGateway       Kind = "GATEWAY"
	KindSerialization Kind = "SERIALIZATION"
	KindTool          Kind = "TOOL"
	KindEvent         Kind = "EVENT"
	KindDispatcher    Kind = "DISPATCHER"
	KindTimeout       Kind = "TIMEOUT"
	KindConfig        Kind = "CONFIG"
	KindIO            Kind = "IO"
)

// Error is the single error type returned by every package in this module.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func new_(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func NewGatewayError(message string) *Error               { return new_(KindGateway, message) }
func NewGatewayErrorWithCause(msg string, c error) *Error  { return wrap(KindGateway, msg, c) }
func NewSerializationError(message string) *Error          { return new_(KindSerialization, message) }
func NewSerializationErrorWithCause(msg string, c error) *Error {
	return wrap(KindSerialization, msg, c)
}
func NewToolError(message string) *Error              { return new_(KindTool, message) }
func NewToolErrorWithCause(msg string, c error) *Error { return wrap(KindTool, msg, c) }
func NewEventError(message string) *Error             { return new_(KindEvent, message) }
func NewDispatcherError(message string) *Error        { return new_(KindDispatcher, message) }
func NewTimeoutError(message string) *Error           { return new_(KindTimeout, message) }
func NewConfigError(message string) *Error            { return new_(KindConfig, message) }
func NewIOError(message string) *Error                { return new_(KindIO, message) }
func NewIOErrorWithCause(msg string, c error) *Error   { return wrap(KindIO, msg, c) }

func kindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func IsGateway(err error) bool       { k, ok := kindOf(err); return ok && k == KindGateway }
func IsSerialization(err error) bool { k, ok := kindOf(err); return ok && k == KindSerialization }
func IsTool(err error) bool          { k, ok := kindOf(err); return ok && k == KindTool }
func IsEvent(err error) bool         { k, ok := kindOf(err); return ok && k == KindEvent }
func IsDispatcher(err error) bool    { k, ok := kindOf(err); return ok && k == KindDispatcher }
func IsTimeout(err error) bool       { k, ok := kindOf(err); return ok && k == KindTimeout }
func IsConfig(err error) bool        { k, ok := kindOf(err); return ok && k == KindConfig }
func IsIO(err error) bool            { k, ok := kindOf(err); return ok && k == KindIO }
