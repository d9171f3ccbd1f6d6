package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(goodbyeCmd)
}

var goodbyeCmd = &cobra.Command{
	Use:   "goodbye",
	Short: "Say goodbye",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "Goodbye")
	},
}
