package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
	ErrorClassConstraint
)

func (c ErrorClass) String() string {
	switch c {
	case ErrorClassTransient:
		return "transient"
	case ErrorClassDeadlock:
		return "deadlock"
	case ErrorClassSerialization:
		return "serialization"
	case ErrorClassConstraint:
		return "constraint"
	default:
		return "permanent"
	}
}

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001":
			return ErrorClassSerialization
		case "40P01":
			return ErrorClassDeadlock
		case "55P03", "57P01", "53300":
			return ErrorClassTransient
		case "23505", "23503", "23502", "23514":
			return ErrorClassConstraint
		}
		if pqErr.Code.Class() == "08" {
			return ErrorClassTransient
		}
	}

	if errors.Is(err, sql.ErrConnDone) {
		return ErrorClassTransient
	}

	return ErrorClassPermanent
}

var ErrNotFound = errors.New("resource not found")

// ValidationError reports missing required request fields. Storage is never touched.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StorageError wraps any failure reading from or writing to the database.
type StorageError struct {
	Op    string
	Class ErrorClass
	Err   error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Class: ClassifyError(err), Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
