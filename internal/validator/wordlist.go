package validator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/rs/zerolog"
)

// DefaultSearchWords is the word list used when none is configured.
var DefaultSearchWords = []string{"booger", "butt"}

// WordListValidator fails when the value contains any configured word as a
// case-sensitive substring.
type WordListValidator struct {
	name   string
	words  []string
	logger *zerolog.Logger
}

func NewWordListValidator(name string, words []string, logger *zerolog.Logger) (*WordListValidator, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("validator %s: no search words configured", name)
	}
	for i, w := range words {
		// an empty word is a substring of every value
		if w == "" {
			return nil, fmt.Errorf("validator %s: search word at index %d is empty", name, i)
		}
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &WordListValidator{
		name:   name,
		words:  append([]string(nil), words...),
		logger: logger,
	}, nil
}

func (v *WordListValidator) Name() string {
	return v.name
}

func (v *WordListValidator) Validate(ctx context.Context, value string, metadata map[string]any) models.ValidationResult {
	now := time.Now()

	var mentioned []string
	for _, w := range v.words {
		if strings.Contains(value, w) {
			mentioned = append(mentioned, w)
		}
	}

	v.logger.Trace().
		Str("validator", v.name).
		Strs("mentioned", mentioned).
		Msg("word list checked")

	var result models.ValidationResult
	if len(mentioned) > 0 {
		result = models.Fail(v.name, models.MethodLexical, "Mentioned toxic words: "+strings.Join(mentioned, ", "))
	} else {
		result = models.Pass(v.name, models.MethodLexical)
	}
	result.Duration = time.Since(now)
	return result
}
