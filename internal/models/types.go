package models

import (
	"time"
)

type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
)

// Detection paths reported on a result.
const (
	MethodLexical = "lexical"
	MethodRegex   = "regex"
	MethodLLM     = "llm"
)

// One validator's output
type ValidationResult struct {
	Validator string  `json:"validator"`
	Outcome   Outcome `json:"outcome"`
	Message   string  `json:"message,omitempty"`
	Method    string  `json:"method,omitempty"`
	// Indeterminate marks a Fail produced because the classifier could not be
	// consulted or returned unusable data, as opposed to a detection.
	Indeterminate bool          `json:"indeterminate,omitempty"`
	Duration      time.Duration `json:"duration_ns"`
}

func Pass(validator string, method string) ValidationResult {
	return ValidationResult{
		Validator: validator,
		Outcome:   OutcomePass,
		Method:    method,
	}
}

func Fail(validator string, method string, message string) ValidationResult {
	return ValidationResult{
		Validator: validator,
		Outcome:   OutcomeFail,
		Message:   message,
		Method:    method,
	}
}

func Indeterminate(validator string, method string, message string) ValidationResult {
	result := Fail(validator, method, message)
	result.Indeterminate = true
	return result
}

func (r ValidationResult) Passed() bool {
	return r.Outcome == OutcomePass
}

func (r ValidationResult) Failed() bool {
	return r.Outcome == OutcomeFail
}

// Input message
type ValidationRequest struct {
	EventID    string         `json:"event_id" jsonschema:"unique event identifier"`
	Text       string         `json:"text" jsonschema:"text to validate"`
	Metadata   map[string]any `json:"metadata,omitempty" jsonschema:"optional auxiliary context such as conversation history"`
	Validators []string       `json:"validators,omitempty" jsonschema:"validator names to run; empty runs every enabled validator"`
}

// Final output of a guard run
type GuardResult struct {
	ID        string             `json:"id"`
	Outcome   Outcome            `json:"outcome"`
	Output    string             `json:"output"`
	Message   string             `json:"message,omitempty"`
	Results   []ValidationResult `json:"results"`
	CreatedAt time.Time          `json:"created_at"`
}

// Failures returns the failed results in run order.
func (g GuardResult) Failures() []ValidationResult {
	var failures []ValidationResult
	for _, r := range g.Results {
		if r.Failed() {
			failures = append(failures, r)
		}
	}
	return failures
}
