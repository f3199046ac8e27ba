// Delete command for the prospyr CLI.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <type> <id>",
		Short: "Remove a record by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := args[0]
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			r, err := a.newResource(kind)
			if err != nil {
				return err
			}
			r.SetID(id)

			if _, err := r.Delete(cmd.Context(), a.flags.using); err != nil {
				return fmt.Errorf("delete %s %d: %w", kind, id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s/%d\n", kind, id)
			return nil
		},
	}
}
