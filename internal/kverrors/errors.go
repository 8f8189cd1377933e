// Package kverrors provides the single failure taxonomy shared by the
// engine, wire protocol, server, client and CLI layers of kvcask.
package kverrors

import "fmt"

// Kind identifies the category of a failure. Every Error carries exactly
// one Kind so callers can branch on failure class with errors.Is instead
// of string matching.
type Kind int

const (
	// Unspecified is the catch-all for cases that must not occur.
	Unspecified Kind = iota
	// IO covers any filesystem or socket error.
	IO
	// Serialization covers malformed records on disk or malformed wire
	// messages.
	Serialization
	// KeyNotFound covers remove of an absent key, and the client-side
	// mapping of a NotFound response for Remove.
	KeyNotFound
	// AddrParse covers a bad socket address at the CLI boundary.
	AddrParse
	// InvalidEngine covers an engine marker/CLI selection conflict.
	InvalidEngine
	// Response covers a client that received an Err response from the
	// server; the message is the server's diagnostic text.
	Response
	// ThreadPoolBuild covers pool construction failures.
	ThreadPoolBuild
)

func (k Kind) String() string {
	switch k {
	case IO:
		return "io"
	case Serialization:
		return "serialization"
	case KeyNotFound:
		return "key not found"
	case AddrParse:
		return "addr parse"
	case InvalidEngine:
		return "invalid engine"
	case Response:
		return "response"
	case ThreadPoolBuild:
		return "thread pool build"
	default:
		return "unspecified"
	}
}

// Error is the concrete failure type returned across package boundaries.
// It always knows its Kind and optionally wraps an underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a *Error of the same Kind, so callers can
// write errors.Is(err, kverrors.ErrKeyNotFound) regardless of message or
// wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an Error of the given kind with a message and no cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an Error of the given kind around an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	if err == nil {
		return New(kind, msg)
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// ResponseErr builds the client-side error for a server Err(msg) response.
func ResponseErr(msg string) *Error {
	return &Error{Kind: Response, Msg: msg}
}

// Sentinels usable with errors.Is for the kinds that have no interesting
// message or cause of their own.
var (
	ErrKeyNotFound     = &Error{Kind: KeyNotFound, Msg: "key not found"}
	ErrInvalidEngine   = &Error{Kind: InvalidEngine, Msg: "engine selection conflicts with on-disk marker"}
	ErrThreadPoolBuild = &Error{Kind: ThreadPoolBuild, Msg: "failed to build thread pool"}
)
