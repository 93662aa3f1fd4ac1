package service

import (
	"errors"
)

// Messages shown to the caller when the model output is unusable
const (
	MsgIncompleteRecipe       = "AI failed to generate a complete recipe text. Please try again."
	MsgIncompleteSubstitution = "AI failed to generate a complete substitution. Please try again."
)

var (
	// ErrIncompleteGeneration matches generation results with missing fields
	ErrIncompleteGeneration = errors.New("incomplete generation")
	// ErrTransport matches failures reaching or decoding the model service
	ErrTransport = errors.New("generation transport failure")
)

// ErrorKind classifies a GenerationError
type ErrorKind int

const (
	KindIncomplete ErrorKind = iota + 1
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindIncomplete:
		return "incomplete"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// GenerationError is returned by every failing generation operation.
// Message is safe to show to end users.
type GenerationError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match the sentinel of the error's kind
func (e *GenerationError) Is(target error) bool {
	switch target {
	case ErrIncompleteGeneration:
		return e.Kind == KindIncomplete
	case ErrTransport:
		return e.Kind == KindTransport
	}
	return false
}

func incompleteError(message string) *GenerationError {
	return &GenerationError{Kind: KindIncomplete, Message: message}
}

func transportError(cause error) *GenerationError {
	var genErr *GenerationError
	if errors.As(cause, &genErr) {
		return genErr
	}
	return &GenerationError{Kind: KindTransport, Message: cause.Error(), Cause: cause}
}
