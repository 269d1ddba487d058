package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cortexa-labs/cortexa/internal/cli"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "cortexa",
		Short: "Cortexa - context-window assembly and accounting",
		Long: `Cortexa assembles bounded, structured context windows for language-model
calls from five sources: stable instructions, conversation history,
retrieved knowledge, the live query, and tool descriptors, and reports the
token cost of each layer.

Environment variables:
  CORTEXA_OPENAI_API_KEY   OpenAI API key (embeddings and chat)
  CORTEXA_DATABASE_URL     Optional Postgres URL for the pgvector index
  CORTEXA_INDEX_PATH       File index location (default: .cortexa/index.json)`,
		Version: version,
	}

	rootCmd.AddCommand(cli.IndexCmd())
	rootCmd.AddCommand(cli.AskCmd())
	rootCmd.AddCommand(cli.ChatCmd())
	rootCmd.AddCommand(cli.MetricCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
