package dynapi

import (
	"github.com/toyz/dynapi/internal/errors"
)

// Sentinels for errors.Is. Every error returned by this package matches
// the sentinel of its code; AlreadyMaterialized also matches ErrMaterialization.
var (
	ErrTypeResolution      = errors.New(errors.TypeResolutionErrorCode, "type resolution failure")
	ErrDuplicateField      = errors.New(errors.DuplicateFieldErrorCode, "duplicate field")
	ErrDuplicateMethod     = errors.New(errors.DuplicateMethodErrorCode, "duplicate method")
	ErrDuplicateType       = errors.New(errors.DuplicateTypeErrorCode, "duplicate type")
	ErrCompilation         = errors.New(errors.CompilationErrorCode, "compilation failure")
	ErrInvalidDescriptor   = errors.New(errors.InvalidDescriptorErrorCode, "invalid descriptor")
	ErrMethodNotFound      = errors.New(errors.MethodNotFoundErrorCode, "method not found")
	ErrFieldNotFound       = errors.New(errors.FieldNotFoundErrorCode, "field not found")
	ErrMaterialization     = errors.New(errors.MaterializationErrorCode, "materialization failure")
	ErrAlreadyMaterialized = errors.New(errors.AlreadyMaterializedErrorCode, "already materialized")
	ErrDispatch            = errors.New(errors.DispatchErrorCode, "dispatch failure")
	ErrBinding             = errors.New(errors.BindingErrorCode, "binding failure")
)

// ErrorCode is the category of a dynapi error
type ErrorCode = errors.ErrorCode

// CodeOf returns the code of the first coded error in err's chain
func CodeOf(err error) ErrorCode { return errors.CodeOf(err) }
