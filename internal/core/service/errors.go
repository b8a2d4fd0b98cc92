package service

import (
	"errors"

	"github.com/rl1809/commerce-admin/internal/core/domain"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindValidation:
		return "VALIDATION"
	case KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL"
	}
}

const (
	ErrMsgProductNotFound    = "Product not found"
	ErrMsgInventoryConflict  = "Inventory was modified concurrently, retry the request"
	ErrMsgInventoryExists    = "Inventory already exists for this product"
	ErrMsgDuplicateRequest   = "duplicate request"
	ErrMsgDatabaseOperation  = "Database operation failed"
	ErrMsgInvalidPeriod      = "start must not be after end"
	ErrMsgUnsupportedGroupBy = "group_by must be one of: category, name"
)

// Error is a failure the caller can act on. Anything else returned by a
// service is an internal error.
type Error struct {
	Kind    Kind
	Message string
	Fields  domain.ValidationErrors
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrProductNotFound   = &Error{Kind: KindNotFound, Message: ErrMsgProductNotFound}
	ErrInventoryNotFound = &Error{Kind: KindNotFound, Message: ErrMsgProductNotFound}
	ErrInventoryConflict = &Error{Kind: KindConflict, Message: ErrMsgInventoryConflict}
	ErrInventoryExists   = &Error{Kind: KindConflict, Message: ErrMsgInventoryExists}
	ErrDuplicateRequest  = &Error{Kind: KindConflict, Message: ErrMsgDuplicateRequest}
)

func NewValidationError(fields domain.ValidationErrors) *Error {
	return &Error{Kind: KindValidation, Message: fields.Error(), Fields: fields}
}

func validationFailure(field, message string) *Error {
	return NewValidationError(domain.ValidationErrors{field: message})
}

// KindOf classifies err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
