// Package catalog loads the embedded data set (spots, species,
// techniques, rules, scoring, seasonality), validates it structurally,
// and compiles the rule table. Loading happens once at startup; the
// resulting Catalog is immutable and safe for concurrent reads. A
// structurally invalid data set is fatal; the service must not start
// with a broken catalog.
package catalog

import (
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"sort"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"fishcast/internal/engine"
	"fishcast/internal/types"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Catalog is the loaded, validated, compiled data set.
type Catalog struct {
	spots        []types.Spot
	spotIndex    map[string]*types.Spot
	species      []types.Species
	speciesIndex map[types.SpeciesID]*types.Species
	techniques   []types.Technique

	ruleDefs        []types.RuleDefinition
	compiledRules   []engine.CompiledRule
	disabledRuleIDs []string

	scoring     *types.ScoringConfig
	seasonality *types.SeasonalityConfig

	rulesetVersion string
	fingerprint    string
}

type spotsFile struct {
	Spots []types.Spot `yaml:"spots"`
}

type speciesFile struct {
	Species []types.Species `yaml:"species"`
}

type techniquesFile struct {
	Techniques []types.Technique `yaml:"techniques"`
}

type rulesFile struct {
	Version string                 `yaml:"version"`
	Rules   []types.RuleDefinition `yaml:"rules"`
}

// Load reads and validates the embedded data set and compiles the rule
// table. Any structural problem is returned as an AppError with code
// internal_catalog_invalid; callers are expected to treat it as fatal.
func Load() (*Catalog, error) {
	return LoadFS(dataFS)
}

// LoadFS loads a data set rooted at fsys, which must contain a data/
// directory with the six catalog files. Load uses the embedded copy;
// tooling can point this at a checkout to validate data before a build.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	var spotsDoc spotsFile
	if err := loadYAML(fsys, "data/spots.yaml", &spotsDoc); err != nil {
		return nil, err
	}

	var speciesDoc speciesFile
	if err := loadYAML(fsys, "data/species.yaml", &speciesDoc); err != nil {
		return nil, err
	}

	var techniquesDoc techniquesFile
	if err := loadYAML(fsys, "data/techniques.yaml", &techniquesDoc); err != nil {
		return nil, err
	}

	var rulesDoc rulesFile
	if err := loadYAML(fsys, "data/rules.yaml", &rulesDoc); err != nil {
		return nil, err
	}

	var scoring types.ScoringConfig
	if err := loadYAML(fsys, "data/scoring.yaml", &scoring); err != nil {
		return nil, err
	}

	var seasonality types.SeasonalityConfig
	if err := loadYAML(fsys, "data/seasonality.yaml", &seasonality); err != nil {
		return nil, err
	}

	applySeasonalityDefaults(&seasonality)

	c := &Catalog{
		spots:          spotsDoc.Spots,
		species:        speciesDoc.Species,
		techniques:     techniquesDoc.Techniques,
		ruleDefs:       rulesDoc.Rules,
		scoring:        &scoring,
		seasonality:    &seasonality,
		rulesetVersion: rulesDoc.Version,
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	c.buildIndexes()
	c.compiledRules = engine.CompileRules(c.ruleDefs)
	for _, def := range c.ruleDefs {
		if !def.IsEnabled() {
			c.disabledRuleIDs = append(c.disabledRuleIDs, def.ID)
		}
	}
	sort.Strings(c.disabledRuleIDs)

	fp, err := c.computeFingerprint(fsys)
	if err != nil {
		return nil, err
	}
	c.fingerprint = fp

	return c, nil
}

func loadYAML(fsys fs.FS, path string, out any) error {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalCatalog,
			fmt.Sprintf("data file %s missing", path), err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return types.NewAppError(types.ErrCodeInternalCatalog,
			fmt.Sprintf("failed to parse %s", path), err)
	}
	return nil
}

func (c *Catalog) buildIndexes() {
	c.spotIndex = make(map[string]*types.Spot, len(c.spots))
	for i := range c.spots {
		c.spotIndex[c.spots[i].ID] = &c.spots[i]
	}
	c.speciesIndex = make(map[types.SpeciesID]*types.Species, len(c.species))
	for i := range c.species {
		c.speciesIndex[c.species[i].ID] = &c.species[i]
	}
}

// computeFingerprint hashes the compiled ruleset identity: version,
// rule IDs in priority order, and enabled flags. Two deployments with
// the same fingerprint evaluate rules identically.
func (c *Catalog) computeFingerprint(fsys fs.FS) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalCatalog, "fingerprint init failed", err)
	}

	h.Write([]byte(c.rulesetVersion))
	for i := range c.compiledRules {
		r := &c.compiledRules[i]
		fmt.Fprintf(h, "|%s:%d:%t", r.ID, r.Priority, r.Enabled)
	}

	raw, err := fs.ReadFile(fsys, "data/rules.yaml")
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalCatalog, "rules file unreadable", err)
	}
	h.Write(raw)

	return hex.EncodeToString(h.Sum(nil)), nil
}

// seasonality defaults; YAML entries omit what matches these.
const (
	defaultPeakAdjustment     = 10
	defaultShoulderAdjustment = 3
	defaultOffAdjustment      = -20
	defaultConfidenceImpact   = 0.2
	defaultOffFloor           = 10

	defaultParcaThreshold  = 0.6
	defaultParcaReduction  = 0.5
	defaultParcaConfidence = 0.3
)

// applySeasonalityDefaults fills zero-valued tuning fields so data
// files only state deviations from the defaults.
func applySeasonalityDefaults(cfg *types.SeasonalityConfig) {
	for id, sp := range cfg.Species {
		if sp.PeakAdjustment == 0 {
			sp.PeakAdjustment = defaultPeakAdjustment
		}
		if sp.ShoulderAdjustment == 0 {
			sp.ShoulderAdjustment = defaultShoulderAdjustment
		}
		if sp.OffAdjustment == 0 {
			sp.OffAdjustment = defaultOffAdjustment
		}
		if sp.ConfidenceImpact == 0 {
			sp.ConfidenceImpact = defaultConfidenceImpact
		}
		if sp.OffFloor == 0 {
			sp.OffFloor = defaultOffFloor
		}
		if sp.Parca.ConditionThreshold == 0 {
			sp.Parca.ConditionThreshold = defaultParcaThreshold
		}
		if sp.Parca.PenaltyReduction == 0 {
			sp.Parca.PenaltyReduction = defaultParcaReduction
		}
		if sp.Parca.Confidence == 0 {
			sp.Parca.Confidence = defaultParcaConfidence
		}
		cfg.Species[id] = sp
	}
}

// Spots returns all spots in file order.
func (c *Catalog) Spots() []types.Spot {
	return c.spots
}

// SpotByID returns the spot or nil.
func (c *Catalog) SpotByID(id string) *types.Spot {
	return c.spotIndex[id]
}

// Species returns all species in file order.
func (c *Catalog) Species() []types.Species {
	return c.species
}

// SpeciesByID returns the species or nil.
func (c *Catalog) SpeciesByID(id types.SpeciesID) *types.Species {
	return c.speciesIndex[id]
}

// Techniques returns all techniques in file order.
func (c *Catalog) Techniques() []types.Technique {
	return c.techniques
}

// Rules returns the compiled rule table, priority-sorted. Disabled
// rules are present but never fire.
func (c *Catalog) Rules() []engine.CompiledRule {
	return c.compiledRules
}

// DisabledRuleIDs returns the IDs of rules shipped disabled, sorted.
func (c *Catalog) DisabledRuleIDs() []string {
	return c.disabledRuleIDs
}

// Scoring returns the engine tuning table.
func (c *Catalog) Scoring() *types.ScoringConfig {
	return c.scoring
}

// Seasonality returns the per-species seasonal calendar.
func (c *Catalog) Seasonality() *types.SeasonalityConfig {
	return c.seasonality
}

// RulesetVersion is the human-assigned version of the rule table.
func (c *Catalog) RulesetVersion() string {
	return c.rulesetVersion
}

// Fingerprint is the hex blake2b-256 digest of the ruleset identity.
func (c *Catalog) Fingerprint() string {
	return c.fingerprint
}
