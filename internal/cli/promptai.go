package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tutu-network/aioncli/internal/config"
	"github.com/tutu-network/aioncli/internal/extract"
	"github.com/tutu-network/aioncli/internal/logging"
)

var promptModel string

func init() {
	promptAICmd.Flags().StringVarP(&promptModel, "model", "m", "", "model to query (overrides config)")
	rootCmd.AddCommand(promptAICmd)
}

var promptAICmd = &cobra.Command{
	Use:   "promptai QUESTION",
	Short: "Ask the model to extract option parameters from a question",
	Long: `Send QUESTION to the chat completions API together with the
extract_options_info function and print the JSON arguments the model
returns. A reply that cannot be parsed is reported, not treated as an error.`,
	Example: `  aioncli promptai "Buy a call option with strike 100 and premium 5"`,
	Args:    cobra.ExactArgs(1),
	RunE:    runPromptAI,
}

func runPromptAI(cmd *cobra.Command, args []string) error {
	question := args[0]
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Here is your plain English question: %s\n", question)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if promptModel != "" {
		cfg.OpenAI.Model = promptModel
	}

	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		logger = logging.Stderr(cfg.Logging.Level)
		logger.Warn("file logging unavailable, logging to stderr", "component", "cli", "file", cfg.Logging.File, "error", err)
	} else {
		defer closer.Close()
	}
	slog.SetDefault(logger)

	client, err := extract.NewClient(cfg.OpenAI)
	if err != nil {
		return err
	}

	return promptAI(cmd.Context(), out, extract.New(client, cfg.OpenAI.Model), question)
}

// promptAI performs one extraction and prints its result. Only transport
// and API errors are returned.
func promptAI(ctx context.Context, out io.Writer, ex *extract.Extractor, question string) error {
	args, err := ex.Extract(ctx, question)
	if err != nil {
		if !extract.IsParseError(err) {
			return err
		}
		slog.Warn("unparseable function call", "component", "cli", "model", ex.Model(), "error", err)
		fmt.Fprintf(out, "Failed to parse response: %v\n", err)
		return nil
	}

	fmt.Fprintf(out, "Here is the JSON extract of key parameters: %s\n", extract.FormatArguments(args))
	return nil
}
