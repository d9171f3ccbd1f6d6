package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tutu-network/aioncli/internal/banner"
	"github.com/tutu-network/aioncli/internal/domain"
)

func init() {
	rootCmd.AddCommand(asciiartCmd)
}

var asciiartCmd = &cobra.Command{
	Use:   "asciiart",
	Short: `Display the "AI On CLI" banner as ASCII art`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		art := banner.Render(domain.BannerLabel)
		if !strings.HasSuffix(art, "\n") {
			art += "\n"
		}
		fmt.Fprint(cmd.OutOrStdout(), art)
	},
}
