package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures so callers can react without inspecting messages.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation: bad user input, rejected before any network call.
	KindValidation
	// KindNetwork: the request never produced an HTTP response.
	KindNetwork
	// KindBackend: the backend answered with a non-2xx status.
	KindBackend
	// KindDecode: the response body did not match the contract.
	KindDecode
	// KindInfeasible: compute-plan reported a non-success status.
	KindInfeasible
	// KindPartial: route assembly produced no segment at all.
	KindPartial
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindBackend:
		return "backend"
	case KindDecode:
		return "decode"
	case KindInfeasible:
		return "infeasible"
	case KindPartial:
		return "partial"
	default:
		return "unknown"
	}
}

// Error carries a Kind alongside the failed operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
