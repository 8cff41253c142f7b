package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/rs/zerolog"
)

const maxLineSize = 1024 * 1024

// InputRecord is one parsed line of the input file.
type InputRecord struct {
	LineNumber int
	Request    models.ValidationRequest
	Error      error
}

type Reader struct {
	input  io.Reader
	logger *zerolog.Logger
}

func NewReader(input io.Reader, logger *zerolog.Logger) *Reader {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Reader{input: input, logger: logger}
}

// ReadAll streams records until EOF or ctx is cancelled. Blank lines are
// skipped; malformed lines yield a record with Error set.
func (r *Reader) ReadAll(ctx context.Context) <-chan InputRecord {
	out := make(chan InputRecord)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(r.input)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		lineNumber := 0
		for scanner.Scan() {
			lineNumber++
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			record := InputRecord{LineNumber: lineNumber}
			if err := json.Unmarshal([]byte(line), &record.Request); err != nil {
				record.Error = fmt.Errorf("line %d: %w", lineNumber, err)
				r.logger.Warn().Int("line", lineNumber).Err(err).Msg("Failed to parse record")
			}

			select {
			case out <- record:
			case <-ctx.Done():
				r.logger.Warn().Int("line", lineNumber).Msg("Reader cancelled")
				return
			}
		}

		if err := scanner.Err(); err != nil {
			r.logger.Error().Err(err).Int("line", lineNumber).Msg("Failed to read input")
			select {
			case out <- InputRecord{LineNumber: lineNumber + 1, Error: err}:
			case <-ctx.Done():
			}
		}
	}()

	return out
}
