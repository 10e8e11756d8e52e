package cli

import (
	"errors"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toyz/dynapi/internal/gomod"
	"github.com/toyz/dynapi/internal/utils"
	"github.com/toyz/dynapi/pkg/dynapi"
	"github.com/toyz/dynapi/pkg/dynapi/codegen"
)

func newGenerateCommand(opts *options) *cobra.Command {
	var pkg, output string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render typed Go wrappers for the manifest types",
		Long: `Materialize the manifest and write one Go file per type: a struct with
forwarding methods, a handler interface and a switch-based dispatcher.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			if output == "" {
				output = e.cfg.Generate.Output
				if !filepath.IsAbs(output) {
					output = filepath.Join(opts.dir, output)
				}
			}
			if pkg == "" {
				pkg = e.cfg.Generate.Package
			}
			if pkg == "" {
				pkg = packageName(output)
			}

			_, handles, err := e.materialize(cmd.Context())
			if err != nil {
				return err
			}
			files, err := generate(e.diag, handles, pkg, output)
			if err != nil {
				return err
			}

			e.diag.Summary("Generation complete", map[string]any{
				"Package": pkg,
				"Files":   len(files),
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&pkg, "package", "p", "", "package name of the generated files")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory, overriding generate.output")
	return cmd
}

// generate writes one file per handle into dir and returns their paths
func generate(d *utils.DiagnosticSystem, handles []*dynapi.TypeHandle, pkg, dir string) ([]string, error) {
	d.Section("Generated files")
	d.Indent()
	defer d.Unindent()

	files := make([]string, 0, len(handles))
	for _, h := range handles {
		src, err := codegen.Render(h, pkg)
		if err != nil {
			return files, err
		}
		file := filepath.Join(dir, strings.ToLower(dynapi.SimpleName(h.Name()))+".go")
		if err := utils.WriteGoFile(file, src); err != nil {
			return files, utils.WrapGenerateError(h.Name(), err)
		}
		d.List("%s", file)
		files = append(files, file)
	}

	mod, err := gomod.Find(dir)
	switch {
	case errors.Is(err, gomod.ErrNoModule):
		d.Verbose("No go.mod found above %s", dir)
	case err != nil:
		return files, err
	default:
		if importPath, err := mod.ImportPath(dir); err == nil {
			d.Info("Import the wrappers from %s", importPath)
		} else {
			d.Warn("%v", err)
		}
	}
	return files, nil
}

// packageName derives a package name from the last element of dir
func packageName(dir string) string {
	name := strings.ToLower(filepath.Base(dir))
	name = strings.Map(func(r rune) rune {
		if r == '-' || r == '.' || r == ' ' {
			return '_'
		}
		return r
	}, name)
	if !token.IsIdentifier(name) || token.IsKeyword(name) {
		return "generated"
	}
	return name
}
