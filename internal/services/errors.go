package services

import (
	"errors"
	"fmt"

	"github.com/adrp/studyshare/internal/db"
)

// Kind classifies caller-facing failures.
type Kind string

const (
	KindUnavailable  Kind = "unavailable"
	KindInit         Kind = "init"
	KindNotFound     Kind = "not_found"
	KindInvalidState Kind = "invalid_state"
	KindValidation   Kind = "validation"
	KindPartial      Kind = "partial"
	KindInternal     Kind = "internal"
)

type ServiceError struct {
	Kind    Kind
	Message string
}

func (e ServiceError) Error() string {
	return e.Message
}

func ErrNotFound(msg string) error {
	return ServiceError{Kind: KindNotFound, Message: msg}
}

func ErrInvalidState(msg string) error {
	return ServiceError{Kind: KindInvalidState, Message: msg}
}

func ErrValidation(msg string) error {
	return ServiceError{Kind: KindValidation, Message: msg}
}

func ErrInit(msg string) error {
	return ServiceError{Kind: KindInit, Message: msg}
}

// KindOf maps any error to its failure class. Store contention surfaces as
// KindUnavailable regardless of how deeply it was wrapped.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var svcErr ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	if errors.Is(err, db.ErrUnavailable) {
		return KindUnavailable
	}
	return KindInternal
}

func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
