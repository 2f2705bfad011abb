package converter

import (
	"errors"
	"fmt"

	"github.com/gnana997/tscanon/pkg/checker"
)

var (
	// ErrUnsupportedConstruct marks a type shape with no canonical form.
	ErrUnsupportedConstruct = errors.New("unsupported construct")
	// ErrUnknownMember marks an indexed access whose key does not exist.
	ErrUnknownMember = errors.New("unknown member")
	// ErrUnresolvedReference marks a type name that is not in scope.
	ErrUnresolvedReference = errors.New("unresolved reference")
)

// ErrorKind names the failure category of a ConversionError.
type ErrorKind string

const (
	KindUnsupportedConstruct ErrorKind = "UnsupportedConstruct"
	KindUnknownMember        ErrorKind = "UnknownMember"
	KindUnresolvedReference  ErrorKind = "UnresolvedReference"
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUnknownMember:
		return ErrUnknownMember
	case KindUnresolvedReference:
		return ErrUnresolvedReference
	default:
		return ErrUnsupportedConstruct
	}
}

// ConversionError is a failure scoped to one declaration.
type ConversionError struct {
	Declaration string           `json:"declaration"`
	Kind        ErrorKind        `json:"kind"`
	Message     string           `json:"message"`
	Location    checker.Location `json:"location"`
}

func (e *ConversionError) Error() string {
	if e.Declaration == "" {
		return fmt.Sprintf("%s: %s: %s", e.Location, e.Kind.sentinel(), e.Message)
	}
	return fmt.Sprintf("%s (%s): %s: %s", e.Declaration, e.Location, e.Kind.sentinel(), e.Message)
}

// Unwrap returns the sentinel for e.Kind so callers can use errors.Is.
func (e *ConversionError) Unwrap() error {
	return e.Kind.sentinel()
}

func unsupported(t *checker.Type, format string, args ...any) *ConversionError {
	return newError(KindUnsupportedConstruct, t, format, args...)
}

func unknownMember(t *checker.Type, format string, args ...any) *ConversionError {
	return newError(KindUnknownMember, t, format, args...)
}

func unresolved(t *checker.Type, format string, args ...any) *ConversionError {
	return newError(KindUnresolvedReference, t, format, args...)
}

func newError(kind ErrorKind, t *checker.Type, format string, args ...any) *ConversionError {
	e := &ConversionError{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if t != nil {
		e.Location = t.Location
	}
	return e
}

// parameterError reports that an operation needs the structure of a type
// parameter. It is recoverable during instantiation, where the parameter is
// bound to a concrete type and the body is resolved again.
type parameterError struct {
	param string
	op    string
	loc   checker.Location
}

func (e *parameterError) Error() string {
	return fmt.Sprintf("%s of type parameter %s cannot be represented before instantiation", e.op, e.param)
}

// asConversionError turns any resolver error into a ConversionError owned by
// the named declaration. Cached errors are shared, so the result is a copy.
func asConversionError(decl string, loc checker.Location, err error) *ConversionError {
	var ce *ConversionError
	if errors.As(err, &ce) {
		out := *ce
		out.Declaration = decl
		return &out
	}

	var pe *parameterError
	if errors.As(err, &pe) {
		return &ConversionError{
			Declaration: decl,
			Kind:        KindUnsupportedConstruct,
			Message:     pe.Error(),
			Location:    pe.loc,
		}
	}

	return &ConversionError{
		Declaration: decl,
		Kind:        KindUnsupportedConstruct,
		Message:     err.Error(),
		Location:    loc,
	}
}
