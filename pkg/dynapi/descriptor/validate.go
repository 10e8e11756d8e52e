package descriptor

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the struct tags of any descriptor value
func Validate(d any) error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// Validate reports a mapping whose verbs are unknown
func (m Mapping) Validate() error {
	return Validate(m)
}

// Validate reports a binding without a uid or with a malformed json payload
func (b Binding) Validate() error {
	return Validate(b)
}

// Validate reports a parameter without a name or type, or a default on a
// source that cannot carry one
func (p Parameter) Validate() error {
	if err := Validate(p); err != nil {
		return err
	}
	if p.Default != "" && !p.Source.AcceptsDefault() {
		return fmt.Errorf("parameter '%s': %s parameters do not accept a default value", p.Name, p.Source)
	}
	return nil
}

// Validate reports a method without a name or with an invalid mapping
func (m Method) Validate() error {
	return Validate(m)
}
