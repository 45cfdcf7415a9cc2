package types

// RuleEffect is one effect entry of a rule definition, applied to every
// resolved target species when the rule fires.
type RuleEffect struct {
	// ApplyToSpecies is a species-id list; "*" targets the full
	// species list passed to the evaluator.
	ApplyToSpecies []string `json:"applyToSpecies" yaml:"applyToSpecies"`

	ScoreBonus int `json:"scoreBonus" yaml:"scoreBonus"`

	TechniqueHints       []TechniqueID `json:"techniqueHints,omitempty" yaml:"techniqueHints"`
	RemoveFromTechniques []TechniqueID `json:"removeFromTechniques,omitempty" yaml:"removeFromTechniques"`

	ModeHint SpeciesMode `json:"modeHint,omitempty" yaml:"modeHint"`

	NoGo bool `json:"noGo,omitempty" yaml:"noGo"`
}

// RuleDefinition is the raw, data-file shape of one rule. The catalog
// compiles the condition map into typed predicates before the engine
// ever sees it.
type RuleDefinition struct {
	ID string `json:"id" yaml:"id"`

	// Enabled defaults to true when absent from the data file.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled"`

	Priority int          `json:"priority" yaml:"priority"`
	Category RuleCategory `json:"category,omitempty" yaml:"category"`

	// Condition maps context field names to predicate values
	// (comparison strings, ranges, lists, booleans, exact values).
	// Every entry must hold for the rule to fire.
	Condition map[string]any `json:"condition" yaml:"condition"`

	Effects []RuleEffect `json:"effects" yaml:"effects"`

	MessageTR string `json:"messageTR,omitempty" yaml:"messageTR"`
}

// IsEnabled reports whether the rule participates in evaluation.
func (r *RuleDefinition) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}
