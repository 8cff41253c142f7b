package guard

import (
	"fmt"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/config"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/validator"
	"github.com/rs/zerolog"
)

// BuildEntries builds every enabled validator of cfg through the registry.
func BuildEntries(cfg *config.GuardConfig, registry *validator.Registry, deps validator.Dependencies, logger *zerolog.Logger) ([]Entry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("guard config is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	var entries []Entry
	for _, vc := range cfg.Guard.Validators {
		if !vc.Enabled {
			logger.Info().
				Str("validator", vc.Name).
				Msg("validator disabled in config, skipping")
			continue
		}

		v, err := registry.Build(vc, deps)
		if err != nil {
			return nil, err
		}

		onFail, err := OnFailByName(vc.OnFail)
		if err != nil {
			return nil, fmt.Errorf("validator %s: %w", vc.Name, err)
		}

		entries = append(entries, Entry{
			Validator: v,
			Descriptor: Descriptor{
				Name:        vc.Name,
				Type:        vc.RegisteredType(),
				DataType:    vc.DataType,
				OnFail:      vc.OnFail,
				Description: vc.Description,
			},
			OnFail: onFail,
		})

		logger.Info().
			Str("validator", vc.Name).
			Str("type", vc.RegisteredType()).
			Str("on_fail", vc.OnFail).
			Msg("validator created successfully")
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no enabled validators found in config")
	}

	logger.Info().
		Int("total_validators", len(entries)).
		Msg("guard built successfully")

	return entries, nil
}
