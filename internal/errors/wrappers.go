package errors

import "fmt"

// Constructors for the definition lifecycle. Each attaches the type name
// (and member name where relevant) as context so diagnostics can render it.

// NewTypeResolutionError reports a type name that could not be resolved
func NewTypeResolutionError(typeName string, cause error) *BaseError {
	err := New(TypeResolutionErrorCode, fmt.Sprintf("cannot resolve type '%s'", typeName)).
		WithContext("type", typeName)
	if cause != nil {
		err.WithCause(cause)
	}
	return err.WithSuggestion("register the type with the resolver before referencing it")
}

// NewDuplicateFieldError reports a field redeclaration
func NewDuplicateFieldError(typeName, field string) *BaseError {
	return Newf(DuplicateFieldErrorCode, "field '%s' already declared on '%s'", field, typeName).
		WithContext("type", typeName).
		WithContext("field", field).
		WithSuggestion("remove the existing field first or choose another name")
}

// NewDuplicateMethodError reports a method signature redeclaration
func NewDuplicateMethodError(typeName, signature string) *BaseError {
	return Newf(DuplicateMethodErrorCode, "method '%s' already declared on '%s'", signature, typeName).
		WithContext("type", typeName).
		WithContext("method", signature)
}

// NewDuplicateTypeError reports an open on a name that already has a pending definition
func NewDuplicateTypeError(typeName string) *BaseError {
	return Newf(DuplicateTypeErrorCode, "a definition named '%s' is already pending", typeName).
		WithContext("type", typeName).
		WithSuggestion("open with WithReuse() to continue editing the pending definition")
}

// NewCompilationError reports malformed declaration text
func NewCompilationError(source string, cause error) *BaseError {
	return Wrap(CompilationErrorCode, "cannot compile declaration", cause).
		WithContext("source", source)
}

// NewInvalidDescriptorError reports a descriptor that failed validation
func NewInvalidDescriptorError(kind string, cause error) *BaseError {
	return Wrapf(InvalidDescriptorErrorCode, cause, "invalid %s descriptor", kind).
		WithContext("descriptor", kind)
}

// NewMethodNotFoundError reports a missing method signature
func NewMethodNotFoundError(typeName, signature string) *BaseError {
	return Newf(MethodNotFoundErrorCode, "no method '%s' on '%s'", signature, typeName).
		WithContext("type", typeName).
		WithContext("method", signature)
}

// NewFieldNotFoundError reports a missing field
func NewFieldNotFoundError(typeName, field string) *BaseError {
	return Newf(FieldNotFoundErrorCode, "no field '%s' on '%s'", field, typeName).
		WithContext("type", typeName).
		WithContext("field", field)
}

// NewMaterializationError reports a definition that could not be loaded
func NewMaterializationError(typeName, reason string) *BaseError {
	return Newf(MaterializationErrorCode, "cannot materialize '%s': %s", typeName, reason).
		WithContext("type", typeName)
}

// NewAlreadyMaterializedError reports use of a session whose definition was already consumed
func NewAlreadyMaterializedError(typeName string) *BaseError {
	return Newf(AlreadyMaterializedErrorCode, "definition '%s' was already materialized or discarded", typeName).
		WithContext("type", typeName).
		WithSuggestion("open a new session to define the type again")
}

// NewSessionReleasedError reports use of a session after Release gave its
// definition back to the pool
func NewSessionReleasedError(typeName string) *BaseError {
	return Newf(AlreadyMaterializedErrorCode, "session for '%s' was released", typeName).
		WithContext("type", typeName).
		WithSuggestion("open the type again with WithReuse to keep editing it")
}

// NewDispatchError reports a dispatcher result that does not fit the declared return type
func NewDispatchError(typeName, method, reason string) *BaseError {
	return Newf(DispatchErrorCode, "%s.%s: %s", typeName, method, reason).
		WithContext("type", typeName).
		WithContext("method", method)
}

// WrapBindingError wraps a request argument binding failure
func WrapBindingError(param, source string, cause error) *BaseError {
	return Wrapf(BindingErrorCode, cause, "cannot bind %s parameter '%s'", source, param).
		WithContext("param", param).
		WithContext("source", source)
}

// WrapConfigurationError wraps configuration loading failures
func WrapConfigurationError(item string, cause error) *BaseError {
	return Wrapf(ConfigurationErrorCode, cause, "failed to load %s", item)
}
