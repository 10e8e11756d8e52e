package utils

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

var importOptions = &imports.Options{
	Comments:   true,
	TabIndent:  true,
	TabWidth:   8,
	FormatOnly: false,
}

// FormatGoCode gofmts source and fixes its import block. filename is only
// used for error positions and to decide which package the file belongs to.
func FormatGoCode(filename string, source []byte) ([]byte, error) {
	formatted, err := imports.Process(filename, source, importOptions)
	if err != nil {
		if parseErr := ValidateGoCode(source); parseErr != nil {
			return source, fmt.Errorf("invalid Go syntax: %w", parseErr)
		}
		return source, err
	}
	return formatted, nil
}

// WriteGoFile formats source and writes it to filename, creating parent
// directories as needed
func WriteGoFile(filename string, source []byte) error {
	formatted, err := FormatGoCode(filename, source)
	if err != nil {
		return WrapProcessError(filename, err)
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return WrapCreateError(filepath.Dir(filename), err)
	}
	if err := os.WriteFile(filename, formatted, 0o644); err != nil {
		return WrapWriteError(filename, err)
	}
	return nil
}

// ValidateGoCode checks that source parses as a Go file
func ValidateGoCode(source []byte) error {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "", source, parser.ParseComments)
	return err
}
