package cli

import (
	"github.com/spf13/cobra"

	"github.com/toyz/dynapi/internal/utils"
	"github.com/toyz/dynapi/pkg/dynapi"
	"github.com/toyz/dynapi/pkg/dynapi/routing"
)

func newInspectCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Materialize the manifest and list its types",
		Long:  "Materialize every manifest type and print its fields, methods and routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			_, handles, err := e.materialize(cmd.Context())
			if err != nil {
				return err
			}

			e.diag.Header("inspect " + e.cfg.Manifest)
			var methods, routes int
			for _, h := range handles {
				n, err := describe(e.diag, h)
				if err != nil {
					return err
				}
				methods += len(h.Methods())
				routes += n
			}

			e.diag.Summary("Inspection complete", map[string]any{
				"Types":   len(handles),
				"Methods": methods,
				"Routes":  routes,
			})
			return nil
		},
	}
}

// describe lists one type and returns how many routes it has
func describe(d *utils.DiagnosticSystem, h *dynapi.TypeHandle) (int, error) {
	routes, err := routing.Routes(h)
	if err != nil {
		return 0, err
	}

	d.Section(h.Name())
	d.Indent()
	defer d.Unindent()

	d.List("base %s", h.Base())
	for _, r := range h.Annotations().All() {
		d.Verbose("record %s", r.Kind())
	}
	for _, f := range h.Fields() {
		d.List("field %s %s", f.TypeName(), f.Name())
	}
	for _, m := range h.Methods() {
		d.List("method %s %s", m.ReturnTypeName(), m.Signature())
	}
	for _, r := range routes {
		d.List("route %s", r)
	}
	return len(routes), nil
}
