// Create command for the prospyr CLI.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/prospyr/pkg/types"
)

type createOptions struct {
	name   string
	email  string
	fields []string
}

func newCreateCmd(a *app) *cobra.Command {
	var opts createOptions
	cmd := &cobra.Command{
		Use:   "create <type>",
		Short: "Create a record",
		Long: `Create a record of the given type and print its new id.

Custom fields are set by name with repeated --field flags. Multiselect values
are comma-separated option names; dates use YYYY-MM-DD.

Example:
  prospyr create person --name "Ada Lovelace" --email ada@example.com
  prospyr create lead --name "Prospect" --field Size=Large`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, a, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "record name (required)")
	cmd.Flags().StringVar(&opts.email, "email", "", "work email address")
	cmd.Flags().StringArrayVar(&opts.fields, "field", nil, "custom field as name=value (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runCreate(cmd *cobra.Command, a *app, kind string, opts createOptions) error {
	if strings.TrimSpace(opts.name) == "" {
		return userError(fmt.Errorf("create: --name must not be blank"))
	}
	fields, err := parseFieldFlags(opts.fields)
	if err != nil {
		return err
	}

	r, err := a.newResource(kind)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	data := map[string]any{"name": opts.name}
	var writeOpts []types.WriteOption
	if opts.email != "" {
		if isLead(kind) {
			writeOpts = append(writeOpts, types.WithEmail(opts.email))
		} else {
			data["emails"] = []any{map[string]any{"email": opts.email, "category": "work"}}
		}
	}
	if err := r.SetFields(data); err != nil {
		return sysError(fmt.Errorf("set fields: %w", err))
	}

	if len(fields) > 0 {
		defs, err := a.loadDefinitions(ctx)
		if err != nil {
			return err
		}
		r.UseDefinitions(defs)
		if err := applyFields(r, defs, fields); err != nil {
			return err
		}
	}

	if _, err := r.Create(ctx, a.flags.using, writeOpts...); err != nil {
		return fmt.Errorf("create %s: %w", kind, err)
	}

	if a.flags.jsonMode {
		return a.writeRecord(cmd.OutOrStdout(), kind, r)
	}
	id, _ := r.Identity()
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s: %d\n", kind, id)
	return nil
}
