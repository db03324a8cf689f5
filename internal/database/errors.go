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
)

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
		case "55P03", "57014", "08000", "08003", "08006":
			return ErrorClassTransient
		case "23505", "23503", "23502", "23514":
			return ErrorClassPermanent
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrorClassPermanent
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	class := ClassifyError(err)
	return class == ErrorClassTransient ||
		class == ErrorClassDeadlock ||
		class == ErrorClassSerialization
}

// PersistenceError wraps a storage fault. Callers surface it as a generic
// "try again" failure and never retry on their own.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Retryable reports whether re-submitting the same request may succeed.
func (e *PersistenceError) Retryable() bool {
	return IsRetryable(e.Err)
}

// Persistence wraps err as a PersistenceError unless it already is one or is
// one of the domain sentinels below.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var pErr *PersistenceError
	if errors.As(err, &pErr) {
		return err
	}
	for _, sentinel := range domainErrors {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return &PersistenceError{Op: op, Err: err}
}

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrProductNotFound         = errors.New("product not found")
	ErrOrderNotFound           = errors.New("order not found")
	ErrCategoryNotFound        = errors.New("category not found")
	ErrEmptyOrder              = errors.New("order has no items")
	ErrInvalidLineItem         = errors.New("invalid order line item")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrOptimisticLockFailed    = errors.New("optimistic lock failed")
)

var domainErrors = []error{
	ErrUserNotFound,
	ErrProductNotFound,
	ErrOrderNotFound,
	ErrCategoryNotFound,
	ErrEmptyOrder,
	ErrInvalidLineItem,
	ErrInvalidStatusTransition,
	ErrOptimisticLockFailed,
}
