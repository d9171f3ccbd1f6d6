// Package cli implements the aioncli command-line interface using Cobra.
// Each subcommand lives in its own file and registers itself in init().
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tutu-network/aioncli/internal/domain"
)

var rootCmd = &cobra.Command{
	Use:   "aioncli",
	Short: "AI On CLI — pull option parameters out of plain English",
	Long: `aioncli forwards a plain English question to an OpenAI-compatible
chat completions API and prints the option parameters (option, strike,
premium) the model extracts from it.

The API key is read from OPENAI_API_KEY or ~/.aioncli/config.toml.`,
	Version:       domain.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("Version: {{.Version}}\n")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	if version != "" {
		rootCmd.Version = version
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
