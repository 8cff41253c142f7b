package batch

import (
	"context"
	"errors"
	"strconv"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/guard"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 5

// OutputRecord is the outcome of one input record.
type OutputRecord struct {
	LineNumber int                 `json:"line"`
	Result     *models.GuardResult `json:"result,omitempty"`
	Rejected   bool                `json:"rejected,omitempty"`
	Error      string              `json:"error,omitempty"`
}

type Processor struct {
	guard   *guard.Guard
	workers int
	logger  *zerolog.Logger
}

func NewProcessor(g *guard.Guard, workers int, logger *zerolog.Logger) *Processor {
	if workers < 1 {
		workers = DefaultWorkers
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Processor{guard: g, workers: workers, logger: logger}
}

// Process validates records with at most p.workers in flight. Output order
// follows completion, not input order.
func (p *Processor) Process(ctx context.Context, records []InputRecord) <-chan OutputRecord {
	out := make(chan OutputRecord)

	go func() {
		defer close(out)

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(p.workers)

		for _, record := range records {
			if egCtx.Err() != nil {
				break
			}
			eg.Go(func() error {
				select {
				case out <- p.processRecord(egCtx, record):
					return nil
				case <-egCtx.Done():
					return egCtx.Err()
				}
			})
		}

		if err := eg.Wait(); err != nil {
			p.logger.Warn().Err(err).Msg("Batch processing interrupted")
		}
	}()

	return out
}

func (p *Processor) processRecord(ctx context.Context, record InputRecord) OutputRecord {
	output := OutputRecord{LineNumber: record.LineNumber}
	if record.Error != nil {
		output.Error = record.Error.Error()
		return output
	}

	req := record.Request
	if req.EventID == "" {
		req.EventID = "line-" + strconv.Itoa(record.LineNumber)
	}

	result, err := p.guard.Validate(ctx, req)
	var validationErr *guard.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &validationErr):
		output.Rejected = true
	default:
		p.logger.Error().Err(err).Int("line", record.LineNumber).Msg("Validation failed")
		output.Error = err.Error()
		return output
	}

	output.Result = &result
	return output
}
