package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/rs/zerolog"
)

const (
	FormatJSONL   = "jsonl"
	FormatSummary = "summary"
)

type Writer interface {
	Write(record OutputRecord) error
	Close() error
}

func NewWriter(w io.Writer, format string, logger *zerolog.Logger) (Writer, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	switch format {
	case "", FormatJSONL:
		return &jsonlWriter{encoder: json.NewEncoder(w)}, nil
	case FormatSummary:
		return &summaryWriter{out: w, summary: NewSummary(), logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

type jsonlWriter struct {
	encoder *json.Encoder
}

func (w *jsonlWriter) Write(record OutputRecord) error {
	return w.encoder.Encode(record)
}

func (w *jsonlWriter) Close() error {
	return nil
}

// ValidatorCounts aggregates one validator over a batch.
type ValidatorCounts struct {
	Pass          int `json:"pass"`
	Fail          int `json:"fail"`
	Indeterminate int `json:"indeterminate"`
}

type Summary struct {
	Total      int                        `json:"total"`
	Passed     int                        `json:"passed"`
	Failed     int                        `json:"failed"`
	Rejected   int                        `json:"rejected"`
	Errors     int                        `json:"errors"`
	Validators map[string]ValidatorCounts `json:"validators"`
	ErrorLines []int                      `json:"error_lines,omitempty"`
}

func NewSummary() *Summary {
	return &Summary{Validators: make(map[string]ValidatorCounts)}
}

func (s *Summary) Add(record OutputRecord) {
	s.Total++
	if record.Rejected {
		s.Rejected++
	}
	if record.Error != "" || record.Result == nil {
		s.Errors++
		s.ErrorLines = append(s.ErrorLines, record.LineNumber)
		return
	}

	if record.Result.Outcome == models.OutcomePass {
		s.Passed++
	} else {
		s.Failed++
	}

	for _, r := range record.Result.Results {
		counts := s.Validators[r.Validator]
		switch {
		case r.Indeterminate:
			counts.Indeterminate++
		case r.Passed():
			counts.Pass++
		default:
			counts.Fail++
		}
		s.Validators[r.Validator] = counts
	}
}

type summaryWriter struct {
	out     io.Writer
	summary *Summary
	logger  *zerolog.Logger
}

func (w *summaryWriter) Write(record OutputRecord) error {
	w.summary.Add(record)
	return nil
}

// Close writes the aggregated summary.
func (w *summaryWriter) Close() error {
	sort.Ints(w.summary.ErrorLines)

	encoded, err := json.MarshalIndent(w.summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if _, err := fmt.Fprintln(w.out, string(encoded)); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	w.logger.Info().
		Int("total", w.summary.Total).
		Int("passed", w.summary.Passed).
		Int("failed", w.summary.Failed).
		Int("errors", w.summary.Errors).
		Msg("Summary written")
	return nil
}
