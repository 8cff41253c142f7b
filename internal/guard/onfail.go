package guard

import (
	"context"
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/config"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
)

// OnFailFunc decides what happens to a value after a validator failed on it.
// It returns the value to pass on, or an error to abort the guard run.
type OnFailFunc func(ctx context.Context, value string, result models.ValidationResult) (string, error)

const RedactedValue = "[REDACTED]"

// ValidationError is returned when an exception policy fired.
type ValidationError struct {
	Results []models.ValidationResult
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Results))
	for _, r := range e.Results {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Validator, r.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Noop keeps the value unchanged.
func Noop(ctx context.Context, value string, result models.ValidationResult) (string, error) {
	return value, nil
}

// Filter drops the value.
func Filter(ctx context.Context, value string, result models.ValidationResult) (string, error) {
	return "", nil
}

// Fix replaces the value with RedactedValue.
func Fix(ctx context.Context, value string, result models.ValidationResult) (string, error) {
	return RedactedValue, nil
}

// Exception aborts with a *ValidationError.
func Exception(ctx context.Context, value string, result models.ValidationResult) (string, error) {
	return value, &ValidationError{Results: []models.ValidationResult{result}}
}

// OnFailByName resolves a policy name from configuration.
func OnFailByName(name string) (OnFailFunc, error) {
	switch name {
	case "", config.OnFailNoop:
		return Noop, nil
	case config.OnFailFilter:
		return Filter, nil
	case config.OnFailFix:
		return Fix, nil
	case config.OnFailException:
		return Exception, nil
	default:
		return nil, fmt.Errorf("unknown on_fail policy %q", name)
	}
}
