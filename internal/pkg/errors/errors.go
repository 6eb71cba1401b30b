package errors

import (
	"errors"
	"fmt"
)

var (
	ErrDatasetNotFound     = errors.New("dataset not found")
	ErrUnknownDocumentType = errors.New("unknown document type")
	ErrInvalid             = errors.New("invalid")
)

// VectorStoreError wraps any fault coming out of a vector backend so that
// callers never have to match on backend-specific error types.
type VectorStoreError struct {
	Op  string
	Err error
}

func (e *VectorStoreError) Error() string {
	return fmt.Sprintf("vector store: %s: %v", e.Op, e.Err)
}

func (e *VectorStoreError) Unwrap() error {
	return e.Err
}

func NewVectorStoreError(op string, err error) error {
	return &VectorStoreError{Op: op, Err: err}
}

// RegistryError wraps metadata-store faults for dataset registry operations.
type RegistryError struct {
	Op  string
	Err error
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("dataset registry: %s: %v", e.Op, e.Err)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

func NewRegistryError(op string, err error) error {
	return &RegistryError{Op: op, Err: err}
}

// DocumentConstructionError reports a malformed item for an otherwise valid
// document type. It is a user-input error, not an infrastructure fault.
type DocumentConstructionError struct {
	DocType string
	Err     error
}

func (e *DocumentConstructionError) Error() string {
	return fmt.Sprintf("construct document of type %q: %v", e.DocType, e.Err)
}

func (e *DocumentConstructionError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrDatasetNotFound)
}

func IsVectorStoreError(err error) bool {
	var target *VectorStoreError
	return errors.As(err, &target)
}

func IsRegistryError(err error) bool {
	var target *RegistryError
	return errors.As(err, &target)
}

func IsDocumentConstructionError(err error) bool {
	var target *DocumentConstructionError
	return errors.As(err, &target)
}
