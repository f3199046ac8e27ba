// Update command for the prospyr CLI.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/prospyr/pkg/types"
)

type updateOptions struct {
	name   string
	email  string
	fields []string
}

func newUpdateCmd(a *app) *cobra.Command {
	var opts updateOptions
	cmd := &cobra.Command{
		Use:   "update <type> <id>",
		Short: "Update record fields",
		Long: `Update reads the record, applies the given changes and writes it back.

--email replaces the address of a lead's email, or of the first entry of the
emails list for the other types.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, a, args[0], args[1], opts)
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "set record name")
	cmd.Flags().StringVar(&opts.email, "email", "", "set email address")
	cmd.Flags().StringArrayVar(&opts.fields, "field", nil, "custom field as name=value (repeatable)")
	return cmd
}

func runUpdate(cmd *cobra.Command, a *app, kind, idArg string, opts updateOptions) error {
	if opts.name == "" && opts.email == "" && len(opts.fields) == 0 {
		return userError(fmt.Errorf("update: at least one of --name, --email or --field must be provided"))
	}
	fields, err := parseFieldFlags(opts.fields)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	r, err := a.readResource(ctx, kind, idArg)
	if err != nil {
		return err
	}

	if opts.name != "" {
		if err := r.SetFields(map[string]any{"name": opts.name}); err != nil {
			return sysError(fmt.Errorf("set fields: %w", err))
		}
	}
	if err := applyFields(r, a.definitions, fields); err != nil {
		return err
	}
	var writeOpts []types.WriteOption
	if opts.email != "" {
		writeOpts = append(writeOpts, emailOption(kind, opts.email))
	}

	if _, err := r.Update(ctx, a.flags.using, writeOpts...); err != nil {
		return fmt.Errorf("update %s %s: %w", kind, idArg, err)
	}

	if a.flags.jsonMode {
		return a.writeRecord(cmd.OutOrStdout(), kind, r)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n", kind, idArg)
	return nil
}
