package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fatal calculation failure.
type ErrorKind string

const (
	KindInvalidInput  ErrorKind = "invalid_input"
	KindInfeasibleCut ErrorKind = "infeasible_cut"
	KindUnknownShape  ErrorKind = "unknown_shape"
)

// Sentinels for errors.Is matching against a *CalcError.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInfeasibleCut = errors.New("infeasible cut")
	ErrUnknownShape  = errors.New("unknown shape")
)

// CalcError is returned by the calculators when a request cannot produce a
// trustworthy result. Field names the offending input using its wire name.
type CalcError struct {
	Kind    ErrorKind
	Field   string
	Message string
}

func (e *CalcError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
}

// Is lets errors.Is match the kind sentinels.
func (e *CalcError) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	case ErrInfeasibleCut:
		return e.Kind == KindInfeasibleCut
	case ErrUnknownShape:
		return e.Kind == KindUnknownShape
	}
	return false
}

// InvalidInput builds an InvalidInput error for field.
func InvalidInput(field, format string, args ...any) error {
	return &CalcError{Kind: KindInvalidInput, Field: field, Message: fmt.Sprintf(format, args...)}
}

// InfeasibleCut builds an InfeasibleCut error for field.
func InfeasibleCut(field, format string, args ...any) error {
	return &CalcError{Kind: KindInfeasibleCut, Field: field, Message: fmt.Sprintf(format, args...)}
}

// UnknownShape builds an UnknownShape error for the rejected value.
func UnknownShape(value string) error {
	return &CalcError{
		Kind:    KindUnknownShape,
		Field:   "shape",
		Message: fmt.Sprintf("unsupported shape %q (expected circle, square, hexagon or rectangle)", value),
	}
}

// AsCalcError extracts a *CalcError from err, if there is one.
func AsCalcError(err error) (*CalcError, bool) {
	var ce *CalcError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
