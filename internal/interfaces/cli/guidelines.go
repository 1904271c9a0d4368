package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/meisai-checker/internal/infrastructure/document/guidelines"
)

func newGuidelinesCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "guidelines",
		Short: "Print the aggregated guideline text the semantic review receives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cliCtx.Config.Guidelines.Dir
			}

			text, err := guidelines.NewLoader(cliCtx.Logger).Load(dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "guideline folder (default: guidelines.dir from config)")
	return cmd
}

//Personal.AI order the ending
