package mcpadapter

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/guard"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
)

// ValidateInput is the MCP tool input schema for running several validators.
type ValidateInput struct {
	EventID    string         `json:"event_id,omitempty" jsonschema:"unique event identifier"`
	Text       string         `json:"text" jsonschema:"text to validate"`
	Metadata   map[string]any `json:"metadata,omitempty" jsonschema:"optional auxiliary context"`
	Validators []string       `json:"validators,omitempty" jsonschema:"validator names to run; empty runs every enabled validator"`
}

// ValidateSingleInput is the MCP tool input schema for one validator.
type ValidateSingleInput struct {
	EventID       string         `json:"event_id,omitempty" jsonschema:"unique event identifier"`
	Text          string         `json:"text" jsonschema:"text to validate"`
	Metadata      map[string]any `json:"metadata,omitempty" jsonschema:"optional auxiliary context"`
	ValidatorName string         `json:"validator_name" jsonschema:"validator name: toxic-words, toxic-language, detect-pii, detect-jailbreak or detect-sensitive-topic"`
}

// ValidateOutput is the structured tool result.
type ValidateOutput struct {
	ID       string                    `json:"id"`
	Outcome  models.Outcome            `json:"outcome"`
	Output   string                    `json:"output"`
	Message  string                    `json:"message,omitempty"`
	Rejected bool                      `json:"rejected"`
	Results  []models.ValidationResult `json:"results"`
}

// NewValidateHandler returns a tool handler that runs the guard.
// Pass the returned function to mcp.AddTool.
func NewValidateHandler(g *guard.Guard) func(context.Context, *mcp.CallToolRequest, ValidateInput) (*mcp.CallToolResult, ValidateOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ValidateInput) (*mcp.CallToolResult, ValidateOutput, error) {
		result, err := g.Validate(ctx, models.ValidationRequest{
			EventID:    input.EventID,
			Text:       input.Text,
			Metadata:   input.Metadata,
			Validators: input.Validators,
		})
		return toolResult(result, err)
	}
}

// NewValidateSingleHandler returns a tool handler for a single validator.
func NewValidateSingleHandler(g *guard.Guard) func(context.Context, *mcp.CallToolRequest, ValidateSingleInput) (*mcp.CallToolResult, ValidateOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ValidateSingleInput) (*mcp.CallToolResult, ValidateOutput, error) {
		result, err := g.ValidateWith(ctx, input.ValidatorName, models.ValidationRequest{
			EventID:  input.EventID,
			Text:     input.Text,
			Metadata: input.Metadata,
		})
		return toolResult(result, err)
	}
}

// Register adds the guard tools to server.
func Register(server *mcp.Server, g *guard.Guard) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_text",
		Description: "Run the configured content validators (toxic words, toxic language, PII, jailbreak, sensitive topics) over a text",
	}, NewValidateHandler(g))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_single",
		Description: "Run a single named validator over a text",
	}, NewValidateSingleHandler(g))
}

// toolResult reports an exception policy as a rejected result instead of a
// tool error so the caller still sees every validator outcome.
func toolResult(result models.GuardResult, err error) (*mcp.CallToolResult, ValidateOutput, error) {
	var validationErr *guard.ValidationError
	rejected := errors.As(err, &validationErr)
	if err != nil && !rejected {
		return nil, ValidateOutput{}, err
	}

	return nil, ValidateOutput{
		ID:       result.ID,
		Outcome:  result.Outcome,
		Output:   result.Output,
		Message:  result.Message,
		Rejected: rejected,
		Results:  result.Results,
	}, nil
}
