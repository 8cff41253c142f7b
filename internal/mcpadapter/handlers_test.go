package mcpadapter

import (
	"context"
	"errors"
	"testing"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/guard"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/validator"
	"github.com/rs/zerolog"
)

func newTestGuard(t *testing.T, onFail guard.OnFailFunc) *guard.Guard {
	t.Helper()
	logger := zerolog.Nop()

	words, err := validator.NewWordListValidator("toxic-words", validator.DefaultSearchWords, &logger)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	extra, err := validator.NewWordListValidator("custom-words", []string{"darn"}, &logger)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	g, err := guard.New([]guard.Entry{
		{Validator: words, OnFail: onFail},
		{Validator: extra},
	})
	if err != nil {
		t.Fatalf("Failed to create guard: %v", err)
	}
	return g
}

func TestValidateHandler(t *testing.T) {
	tests := []struct {
		name          string
		input         ValidateInput
		expectOutcome models.Outcome
		expectResults int
		expectMessage string
	}{
		{
			name:          "clean text",
			input:         ValidateInput{EventID: "evt-1", Text: "hello there"},
			expectOutcome: models.OutcomePass,
			expectResults: 2,
		},
		{
			name:          "toxic word",
			input:         ValidateInput{EventID: "evt-2", Text: "you booger"},
			expectOutcome: models.OutcomeFail,
			expectResults: 2,
			expectMessage: "toxic-words: Mentioned toxic words: booger",
		},
		{
			name:          "selected validator only",
			input:         ValidateInput{Text: "darn it", Validators: []string{"custom-words"}},
			expectOutcome: models.OutcomeFail,
			expectResults: 1,
			expectMessage: "custom-words: Mentioned toxic words: darn",
		},
	}

	handler := NewValidateHandler(newTestGuard(t, guard.Noop))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			callResult, out, err := handler(context.Background(), nil, tt.input)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if callResult != nil {
				t.Errorf("Expected nil CallToolResult, got %+v", callResult)
			}
			if out.Outcome != tt.expectOutcome {
				t.Errorf("Expected outcome %s, got %s", tt.expectOutcome, out.Outcome)
			}
			if len(out.Results) != tt.expectResults {
				t.Errorf("Expected %d results, got %d", tt.expectResults, len(out.Results))
			}
			if out.Message != tt.expectMessage {
				t.Errorf("Expected message %q, got %q", tt.expectMessage, out.Message)
			}
			if out.Rejected {
				t.Error("Expected result not to be rejected")
			}
		})
	}
}

func TestValidateHandler_ExceptionPolicyMarksRejected(t *testing.T) {
	handler := NewValidateHandler(newTestGuard(t, guard.Exception))

	_, out, err := handler(context.Background(), nil, ValidateInput{Text: "butt"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !out.Rejected {
		t.Error("Expected result to be rejected")
	}
	if out.Outcome != models.OutcomeFail {
		t.Errorf("Expected outcome fail, got %s", out.Outcome)
	}
	if out.ID == "" {
		t.Error("Expected a generated ID")
	}
}

func TestValidateHandler_UnknownValidator(t *testing.T) {
	handler := NewValidateHandler(newTestGuard(t, guard.Noop))

	_, _, err := handler(context.Background(), nil, ValidateInput{Text: "hi", Validators: []string{"missing"}})
	if !errors.Is(err, guard.ErrValidatorNotFound) {
		t.Fatalf("Expected ErrValidatorNotFound, got %v", err)
	}
}

func TestValidateSingleHandler(t *testing.T) {
	handler := NewValidateSingleHandler(newTestGuard(t, guard.Fix))

	_, out, err := handler(context.Background(), nil, ValidateSingleInput{
		Text:          "booger",
		ValidatorName: "toxic-words",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(out.Results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(out.Results))
	}
	if out.Output != guard.RedactedValue {
		t.Errorf("Expected output %q, got %q", guard.RedactedValue, out.Output)
	}

	_, _, err = handler(context.Background(), nil, ValidateSingleInput{Text: "x", ValidatorName: "missing"})
	if !errors.Is(err, guard.ErrValidatorNotFound) {
		t.Errorf("Expected ErrValidatorNotFound, got %v", err)
	}
}
