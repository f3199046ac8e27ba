package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/prospyr/pkg/resources"
)

func newAccountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Show the account the connection belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.connections()
			if err != nil {
				return err
			}
			acct := &resources.Account{}
			acct.UseRegistry(reg)
			if _, err := acct.Read(cmd.Context(), a.flags.using); err != nil {
				return fmt.Errorf("read account: %w", err)
			}

			if a.flags.jsonMode {
				raw, err := acct.RawData()
				if err != nil {
					return sysError(err)
				}
				return writeJSON(cmd.OutOrStdout(), raw)
			}
			id, _ := acct.Identity()
			fmt.Fprintf(cmd.OutOrStdout(), "Account %d: %s\n", id, acct.Name)
			return nil
		},
	}
}
