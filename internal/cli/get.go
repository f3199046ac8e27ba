// Get command retrieves a record by id.
package cli

import (
	"github.com/spf13/cobra"
)

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <type> <id>",
		Short: "Get a record by id",
		Long: `Get reads a record of the given type by its id and prints its name and
custom field values, or the full record with --json.

Example:
  prospyr get people 12
  prospyr get opportunity 7 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.readResource(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.writeRecord(cmd.OutOrStdout(), args[0], r)
		},
	}
}
