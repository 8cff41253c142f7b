package config

// Names of the built-in validators.
const (
	ToxicWords           = "toxic-words"
	ToxicLanguage        = "toxic-language"
	DetectPII            = "detect-pii"
	DetectJailbreak      = "detect-jailbreak"
	DetectSensitiveTopic = "detect-sensitive-topic"
)

// DefaultConfig enables every built-in validator with its default parameters.
func DefaultConfig() *GuardConfig {
	return &GuardConfig{
		Guard: Guard{
			Validators: []ValidatorConfiguration{
				{
					Name:        ToxicWords,
					Enabled:     true,
					Description: "Rejects text containing configured words",
				},
				{
					Name:        DetectPII,
					Enabled:     true,
					Description: "Detects personally identifiable information",
				},
				{
					Name:        DetectJailbreak,
					Enabled:     true,
					Description: "Detects attempts to circumvent model restrictions",
				},
				{
					Name:        ToxicLanguage,
					Enabled:     true,
					Description: "Scores toxicity and fails above the threshold",
				},
				{
					Name:        DetectSensitiveTopic,
					Enabled:     true,
					Description: "Scores topic sensitivity and fails above the threshold",
				},
			},
		},
	}
}
