package utils

import "fmt"

// The wrappers below keep the "failed to <verb> <item>" wording of command
// and codegen errors in one place. The cause stays reachable with errors.Is.

// WrapLoadError wraps a failure to read item, such as a manifest file
func WrapLoadError(item string, err error) error {
	return fmt.Errorf("failed to load %s: %w", item, err)
}

// WrapGenerateError wraps a failure to render the wrapper for a type
func WrapGenerateError(typeName string, err error) error {
	return fmt.Errorf("failed to generate %s: %w", typeName, err)
}

// WrapProcessError wraps a failure to format generated source
func WrapProcessError(filename string, err error) error {
	return fmt.Errorf("failed to process %s: %w", filename, err)
}

// WrapCreateError wraps a failure to create an output directory
func WrapCreateError(dir string, err error) error {
	return fmt.Errorf("failed to create %s: %w", dir, err)
}

// WrapWriteError wraps a failure to write an output file
func WrapWriteError(filename string, err error) error {
	return fmt.Errorf("failed to write %s: %w", filename, err)
}
