package catalog

import (
	"errors"
	"fmt"

	"storefront/internal/domain/categories"
	"storefront/internal/domain/products"
	"storefront/internal/domain/sizes"
	"storefront/internal/upload"
)

// Error kinds. Every *Error unwraps to exactly one of them.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrUpload     = errors.New("upload failed")
)

// Error is a client-facing failure with a message safe to return in a response.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func validationError(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func uploadError(err error) error {
	return &Error{Kind: ErrUpload, Message: err.Error()}
}

// translate maps repository sentinels onto the catalog error kinds.
func translate(err error) error {
	var ce *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ce):
		return err
	case errors.Is(err, categories.ErrTopNotFound):
		return notFound("top category not found")
	case errors.Is(err, categories.ErrParentNotFound):
		return notFound("parent category not found")
	case errors.Is(err, categories.ErrChildNotFound):
		return notFound("child category not found")
	case errors.Is(err, categories.ErrDuplicateName):
		return conflict("category with this name already exists")
	case errors.Is(err, products.ErrProductNotFound):
		return notFound("product not found")
	case errors.Is(err, products.ErrDuplicateProduct):
		return conflict("product with this id already exists")
	case errors.Is(err, sizes.ErrSizeNotFound):
		return notFound("size not found")
	case errors.Is(err, sizes.ErrDuplicateSize):
		return conflict("size already exists")
	case errors.Is(err, upload.ErrInvalidFile), errors.Is(err, upload.ErrUnknownField):
		return uploadError(err)
	}
	return err
}
