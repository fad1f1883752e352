package errs

import (
	"errors"
	"strings"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrConcurrentUpdate  = errors.New("record was modified concurrently")
	ErrInvalidPayload    = errors.New("invalid message payload")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissingArtifact   = errors.New("artifact key is required")
	ErrUnknownDriver     = errors.New("unknown driver")
	ErrHandlerPanic      = errors.New("handler panicked")

	// ErrVideoNotFound text is part of the external contract.
	ErrVideoNotFound = errors.New("Vídeo não encontrado.") //nolint:stylecheck
)

// Class tells the queue consumer what to do with a failed message.
type Class int

const (
	None Class = iota
	Transient
	Permanent
)

func (c Class) String() string {
	switch c {
	case None:
		return "none"
	case Transient:
		return "transient"
	case Permanent:
		return "permanent"
	default:
		return "unknown"
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// MarkPermanent marks err as a failure that redelivery will never fix.
func MarkPermanent(err error) error {
	if err == nil {
		return nil
	}

	return &permanentError{err: err}
}

var permanentKinds = []error{
	ErrVideoNotFound,
	ErrRecordNotFound,
	ErrInvalidPayload,
	ErrInvalidTransition,
	ErrMissingArtifact,
}

// notFoundMarker matches not-found failures raised as plain text by collaborators.
const notFoundMarker = "não encontrado"

func Classify(err error) Class {
	if err == nil {
		return None
	}

	// a recovered panic is retried whatever its text says
	if errors.Is(err, ErrHandlerPanic) {
		return Transient
	}

	var pe *permanentError
	if errors.As(err, &pe) {
		return Permanent
	}

	for _, kind := range permanentKinds {
		if errors.Is(err, kind) {
			return Permanent
		}
	}

	if strings.Contains(strings.ToLower(err.Error()), notFoundMarker) {
		return Permanent
	}

	return Transient
}

func IsPermanent(err error) bool {
	return Classify(err) == Permanent
}
