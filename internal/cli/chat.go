package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cortexa-labs/cortexa/internal/config"
	"github.com/cortexa-labs/cortexa/internal/service"
)

// ChatCmd creates the chat command.
func ChatCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive session against the knowledge index",
		Long: `Starts an interactive session. Each query runs the full pipeline:
retrieval, memory recall, context assembly, token accounting, model
invocation, and tool-call routing. Type 'clear' to reset the conversation
memory, 'quit' or 'exit' to leave.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), quiet)
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Skip the context-window breakdown before each response")

	return cmd
}

func runChat(ctx context.Context, quiet bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	defer initTelemetry(cfg)()

	pipeline, cleanup, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	accountant := service.NewTokenAccountant(cfg.CharsPerToken)

	fmt.Println("cortexa chat - type your questions, 'quit' to exit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "quit" || query == "exit" {
			break
		}
		if query == "clear" {
			pipeline.Memory().Clear()
			fmt.Println("conversation memory cleared")
			continue
		}

		result, err := pipeline.ProcessQuery(ctx, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		if !quiet {
			fmt.Print(accountant.Render(result.Measurements))
		}
		fmt.Printf("\n%s\n", result.Response)
	}

	return scanner.Err()
}
