package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cortexa-labs/cortexa/internal/domain"
	"github.com/cortexa-labs/cortexa/internal/service"
)

// DefaultChatModel is the model used for context-window inference.
const DefaultChatModel = "gpt-4.1-mini"

// ChatAPI defines the interface for chat completion calls
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatClient implements the model invocation collaborator on top of the
// OpenAI chat completions API. Tool descriptors are translated into
// function tools; any tool-call requests in the response are surfaced to
// the caller, never executed here.
type ChatClient struct {
	api         ChatAPI
	model       string
	temperature float32
}

// ChatConfig configures a ChatClient.
type ChatConfig struct {
	APIKey      string
	Model       string
	Temperature float32
}

// NewChatClient creates a ChatClient. Temperature defaults to zero for
// reproducible answers.
func NewChatClient(cfg ChatConfig) *ChatClient {
	model := cfg.Model
	if model == "" {
		model = DefaultChatModel
	}
	return &ChatClient{
		api:         openai.NewClient(cfg.APIKey),
		model:       model,
		temperature: cfg.Temperature,
	}
}

// Complete sends the assembled prompt and tool surface to the model and
// returns its text plus any tool-call requests.
func (c *ChatClient) Complete(ctx context.Context, prompt string, tools []domain.ToolDescriptor) (*service.ModelResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Tools: buildTools(tools),
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	msg := resp.Choices[0].Message
	out := &service.ModelResponse{Text: msg.Content}
	for _, call := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, service.ToolCall{
			Name:      call.Function.Name,
			Arguments: decodeToolArguments(call.Function.Arguments),
		})
	}
	return out, nil
}

// buildTools maps registry descriptors to OpenAI function tools. Every tool
// takes a single "values" string: the comma-separated argument list the
// registry parses.
func buildTools(descriptors []domain.ToolDescriptor) []openai.Tool {
	tools := make([]openai.Tool, 0, len(descriptors))
	for _, d := range descriptors {
		params := map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
		if len(d.Args) > 0 {
			params["properties"] = map[string]any{
				"values": map[string]any{
					"type":        "string",
					"description": "Comma-separated numeric values: " + strings.Join(d.Args, ", "),
				},
			}
			params["required"] = []string{"values"}
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  params,
			},
		})
	}
	return tools
}

// decodeToolArguments extracts the raw argument string from the model's
// JSON-encoded function arguments. Falls back to the raw payload when it is
// not the expected shape, so the registry can report the bad token.
func decodeToolArguments(raw string) string {
	var payload struct {
		Values string `json:"values"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return raw
	}
	return payload.Values
}
