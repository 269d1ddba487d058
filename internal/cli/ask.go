package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cortexa-labs/cortexa/internal/config"
	"github.com/cortexa-labs/cortexa/internal/openai"
	"github.com/cortexa-labs/cortexa/internal/service"
)

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var (
		invoke      bool
		showContext bool
	)

	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Assemble and inspect the context window for one query",
		Long: `Assembles the five-layer context window for a query and prints the
per-layer token breakdown. With --invoke the assembled context is also sent
to the model and the response printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd.Context(), args[0], invoke, showContext)
		},
	}

	cmd.Flags().BoolVar(&invoke, "invoke", false, "Send the assembled context to the model")
	cmd.Flags().BoolVar(&showContext, "show-context", false, "Print the full assembled context")

	return cmd
}

func runAsk(ctx context.Context, query string, invoke, showContext bool) error {
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

	if !invoke {
		assembled, measurements, err := pipeline.Assemble(ctx, query)
		if err != nil {
			return err
		}
		if showContext {
			fmt.Println(assembled.Prompt())
			fmt.Println()
		}
		fmt.Print(accountant.Render(measurements))
		return nil
	}

	result, err := pipeline.ProcessQuery(ctx, query)
	if err != nil {
		return err
	}
	if showContext {
		fmt.Println(result.Context.Prompt())
		fmt.Println()
	}
	fmt.Print(accountant.Render(result.Measurements))
	fmt.Printf("\n%s\n", result.Response)
	return nil
}

// newPipeline wires the per-session query pipeline from configuration.
func newPipeline(ctx context.Context, cfg *config.Config) (*service.Pipeline, func(), error) {
	client, err := newEmbeddingClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	index, cleanup, err := openIndex(ctx, cfg, false)
	if err != nil {
		return nil, nil, err
	}

	retrieval := service.NewRetrievalService(client, index, cfg.RetrievalK)
	memory := service.NewConversationMemory(cfg.MemoryCapacity)
	registry := service.NewRegistry()
	assembler := service.NewAssembler(cfg.SystemPrompt, memory, retrieval, registry, cfg.RetrievalK)
	accountant := service.NewTokenAccountant(cfg.CharsPerToken)

	model := openai.NewChatClient(openai.ChatConfig{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.ChatModel,
		Temperature: cfg.Temperature,
	})

	return service.NewPipeline(assembler, accountant, registry, model), cleanup, nil
}
