package guard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/metrics"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/validator"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var ErrValidatorNotFound = errors.New("validator not found")

// Recorder persists guard results.
type Recorder interface {
	Record(ctx context.Context, result models.GuardResult) error
}

// Descriptor describes a configured validator.
type Descriptor struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DataType    string `json:"data_type"`
	OnFail      string `json:"on_fail"`
	Description string `json:"description,omitempty"`
}

// Entry is one configured validator together with its on-fail policy.
type Entry struct {
	Validator  validator.Validator
	Descriptor Descriptor
	OnFail     OnFailFunc
}

type Option func(*Guard)

// WithOnFail overrides the on-fail policy of one validator.
func WithOnFail(name string, fn OnFailFunc) Option {
	return func(g *Guard) {
		g.overrides[name] = fn
	}
}

func WithRecorder(r Recorder) Option {
	return func(g *Guard) {
		g.recorder = r
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

func WithLogger(logger *zerolog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// Guard runs a fixed, ordered set of validators over a text and applies the
// on-fail policy of every validator that failed.
type Guard struct {
	entries   []Entry
	index     map[string]int
	overrides map[string]OnFailFunc
	recorder  Recorder
	metrics   *metrics.Metrics
	logger    *zerolog.Logger
}

func New(entries []Entry, opts ...Option) (*Guard, error) {
	g := &Guard{
		entries:   make([]Entry, 0, len(entries)),
		index:     make(map[string]int, len(entries)),
		overrides: make(map[string]OnFailFunc),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		nop := zerolog.Nop()
		g.logger = &nop
	}

	for _, e := range entries {
		if e.Validator == nil {
			return nil, fmt.Errorf("entry %s has no validator", e.Descriptor.Name)
		}
		name := e.Validator.Name()
		if _, dup := g.index[name]; dup {
			return nil, fmt.Errorf("duplicate validator %s", name)
		}
		if e.Descriptor.Name == "" {
			e.Descriptor.Name = name
		}
		if fn, ok := g.overrides[name]; ok {
			e.OnFail = fn
		}
		if e.OnFail == nil {
			e.OnFail = Noop
		}
		g.index[name] = len(g.entries)
		g.entries = append(g.entries, e)
	}

	return g, nil
}

// Validators lists the configured validators in run order.
func (g *Guard) Validators() []Descriptor {
	descriptors := make([]Descriptor, 0, len(g.entries))
	for _, e := range g.entries {
		descriptors = append(descriptors, e.Descriptor)
	}
	return descriptors
}

// Validate runs the requested validators (all of them when none are named).
// The returned error is non-nil when an on-fail policy aborted the run; the
// result is complete in that case too.
func (g *Guard) Validate(ctx context.Context, req models.ValidationRequest) (models.GuardResult, error) {
	selected, err := g.selectEntries(req.Validators)
	if err != nil {
		return models.GuardResult{}, err
	}
	return g.run(ctx, req, selected)
}

// ValidateWith runs a single validator.
func (g *Guard) ValidateWith(ctx context.Context, name string, req models.ValidationRequest) (models.GuardResult, error) {
	i, ok := g.index[name]
	if !ok {
		return models.GuardResult{}, fmt.Errorf("%w: %s", ErrValidatorNotFound, name)
	}
	return g.run(ctx, req, []Entry{g.entries[i]})
}

func (g *Guard) selectEntries(names []string) ([]Entry, error) {
	if len(names) == 0 {
		return g.entries, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := g.index[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrValidatorNotFound, name)
		}
		wanted[name] = true
	}

	selected := make([]Entry, 0, len(wanted))
	for _, e := range g.entries {
		if wanted[e.Validator.Name()] {
			selected = append(selected, e)
		}
	}
	return selected, nil
}

func (g *Guard) run(ctx context.Context, req models.ValidationRequest, entries []Entry) (models.GuardResult, error) {
	id := req.EventID
	if id == "" {
		id = uuid.NewString()
	}

	g.logger.Info().
		Str("requestID", id).
		Int("validators", len(entries)).
		Msg("starting validation")

	results := make([]models.ValidationResult, len(entries))

	var eg errgroup.Group
	for i, e := range entries {
		eg.Go(func() error {
			now := time.Now()
			r := e.Validator.Validate(ctx, req.Text, req.Metadata)
			if r.Validator == "" {
				r.Validator = e.Validator.Name()
			}
			g.metrics.ObserveValidation(r.Validator, outcomeLabel(r), time.Since(now))
			results[i] = r
			return nil
		})
	}
	// validators never return errors
	_ = eg.Wait()

	result := models.GuardResult{
		ID:        id,
		Outcome:   models.OutcomePass,
		Output:    req.Text,
		Results:   results,
		CreatedAt: time.Now().UTC(),
	}

	var messages []string
	var policyErrs []error
	for i, r := range results {
		if !r.Failed() {
			continue
		}
		result.Outcome = models.OutcomeFail
		messages = append(messages, fmt.Sprintf("%s: %s", r.Validator, r.Message))

		out, err := entries[i].OnFail(ctx, result.Output, r)
		if err != nil {
			policyErrs = append(policyErrs, err)
			continue
		}
		result.Output = out
	}
	result.Message = strings.Join(messages, "; ")

	g.logger.Info().
		Str("requestID", id).
		Str("outcome", string(result.Outcome)).
		Int("failures", len(messages)).
		Msg("validation complete")

	if g.recorder != nil {
		if err := g.recorder.Record(ctx, result); err != nil {
			g.logger.Error().Err(err).Str("requestID", id).Msg("failed to record guard result")
		}
	}

	return result, mergePolicyErrors(policyErrs)
}

// mergePolicyErrors folds every *ValidationError into one and joins the rest.
func mergePolicyErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	merged := &ValidationError{}
	var others []error
	for _, err := range errs {
		var ve *ValidationError
		if errors.As(err, &ve) {
			merged.Results = append(merged.Results, ve.Results...)
			continue
		}
		others = append(others, err)
	}

	if len(merged.Results) == 0 {
		return errors.Join(others...)
	}
	if len(others) == 0 {
		return merged
	}
	return errors.Join(append([]error{merged}, others...)...)
}

func outcomeLabel(r models.ValidationResult) string {
	if r.Indeterminate {
		return "indeterminate"
	}
	return string(r.Outcome)
}
