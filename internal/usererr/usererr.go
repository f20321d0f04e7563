package usererr

import (
	"errors"
)

// Kind classifies an error that is reported back to the invoking user.
type Kind int

const (
	Unknown Kind = iota
	InvalidInput
	UpstreamUnavailable
	UpstreamFailure
	ParseFailure
	AmbiguousPhrase
	Unauthorized
)

var kindNames = map[Kind]string{
	Unknown:             "unknown error",
	InvalidInput:        "invalid input",
	UpstreamUnavailable: "upstream unavailable",
	UpstreamFailure:     "upstream failure",
	ParseFailure:        "parse failure",
	AmbiguousPhrase:     "ambiguous phrase",
	Unauthorized:        "unauthorized",
}

// Error makes a Kind usable as an errors.Is target.
func (k Kind) Error() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[Unknown]
}

// GenericMessage is shown for anything that is not a classified user error.
const GenericMessage = "An unknown error occurred, sorry"

// Error carries a user-facing message plus an optional underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// New returns a classified error with a user-facing message.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap is New with an underlying cause kept for logging.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the Kind of err, or Unknown.
func KindOf(err error) Kind {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return Unknown
}

// Message returns the text to show the user for err. Unclassified errors
// get the generic notice so internals never leak into chat.
func Message(err error) string {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Msg
	}
	return GenericMessage
}
