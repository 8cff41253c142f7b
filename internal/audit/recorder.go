package audit

import (
	"context"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
)

// Recorder stores guard results for later inspection.
type Recorder interface {
	Record(ctx context.Context, result models.GuardResult) error
	Recent(ctx context.Context, limit int) ([]models.GuardResult, error)
	Close() error
}

const DefaultRecentLimit = 50

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) Record(ctx context.Context, result models.GuardResult) error {
	return nil
}

func (NopRecorder) Recent(ctx context.Context, limit int) ([]models.GuardResult, error) {
	return []models.GuardResult{}, nil
}

func (NopRecorder) Close() error {
	return nil
}
