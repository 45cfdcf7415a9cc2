package engine

import (
	"math"
	"sort"
	"strings"

	"fishcast/internal/types"
)

// CompiledRule is a rule whose condition has been compiled into typed
// predicates. Produced once at catalog load; evaluation never sees raw
// condition maps.
type CompiledRule struct {
	ID       string
	Enabled  bool
	Priority int
	Category types.RuleCategory

	Predicates []predicate
	Effects    []types.RuleEffect

	MessageTR string

	// ScaleByWaterMass grades the rule's score bonuses by the context
	// water-mass strength instead of applying them binarily. Set by
	// the compiler when the raw condition references the water-mass
	// field, so data files need no new syntax.
	ScaleByWaterMass bool
}

// priorityToCategory infers a category for rules that predate the
// explicit category field.
var priorityToCategory = map[int]types.RuleCategory{
	10: types.CategoryAbsolute,
	9:  types.CategoryWindCoast,
	8:  types.CategoryWeatherMode,
	7:  types.CategoryWeatherMode,
	6:  types.CategoryIstanbul,
	5:  types.CategoryTechniqueTime,
	4:  types.CategoryTechniqueTime,
}

func inferCategory(priority int) types.RuleCategory {
	if cat, ok := priorityToCategory[priority]; ok {
		return cat
	}
	return types.CategoryTechniqueTime
}

// CompileRule compiles one raw definition. The caller is responsible
// for load-time structural validation (unique IDs, known enum values).
func CompileRule(def types.RuleDefinition) CompiledRule {
	category := def.Category
	if category == "" {
		category = inferCategory(def.Priority)
	}

	_, scaleByWaterMass := def.Condition["waterMassProxy"]

	return CompiledRule{
		ID:               def.ID,
		Enabled:          def.IsEnabled(),
		Priority:         def.Priority,
		Category:         category,
		Predicates:       compileCondition(def.Condition),
		Effects:          def.Effects,
		MessageTR:        def.MessageTR,
		ScaleByWaterMass: scaleByWaterMass,
	}
}

// CompileRules compiles a rule table and sorts it by priority
// descending. The sort is stable: rules with equal priority keep their
// input order.
func CompileRules(defs []types.RuleDefinition) []CompiledRule {
	compiled := make([]CompiledRule, 0, len(defs))
	for _, def := range defs {
		compiled = append(compiled, CompileRule(def))
	}
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})
	return compiled
}

// modeHint is the winning mode override for one species. Higher rule
// priority wins; ties break to the alphabetically earlier mode.
type modeHint struct {
	Priority int
	Mode     types.SpeciesMode
}

// priorityMessage pairs a rule message with its rule's priority for
// ordered rendering.
type priorityMessage struct {
	Priority int
	Message  string
}

// RuleResult is the accumulated evaluation outcome for one spot.
type RuleResult struct {
	IsNoGo      bool
	NoGoReasons []string

	// SpeciesBonuses holds the final capped bonus per species.
	SpeciesBonuses map[types.SpeciesID]int

	TechniqueHints   map[types.SpeciesID][]types.TechniqueID
	RemoveTechniques map[types.SpeciesID][]types.TechniqueID

	ModeHints map[types.SpeciesID]modeHint

	Messages       []priorityMessage
	ActiveRules    []types.FiredRule
	FiredRuleCount int

	// Capping trace. Every intermediate of the capping pass is kept.
	RawByCategory    map[types.SpeciesID]map[types.RuleCategory]int
	CappedByCategory map[types.SpeciesID]map[types.RuleCategory]int
	PositiveRaw      map[types.SpeciesID]int
	PositiveCapped   map[types.SpeciesID]int
	NegativeTotal    map[types.SpeciesID]int
	FinalRuleBonus   map[types.SpeciesID]int
}

// ModeHintFor returns the winning mode override for a species, if any.
func (r *RuleResult) ModeHintFor(sp types.SpeciesID) (types.SpeciesMode, bool) {
	h, ok := r.ModeHints[sp]
	return h.Mode, ok
}

func newRuleResult() *RuleResult {
	return &RuleResult{
		SpeciesBonuses:   make(map[types.SpeciesID]int),
		TechniqueHints:   make(map[types.SpeciesID][]types.TechniqueID),
		RemoveTechniques: make(map[types.SpeciesID][]types.TechniqueID),
		ModeHints:        make(map[types.SpeciesID]modeHint),
		RawByCategory:    make(map[types.SpeciesID]map[types.RuleCategory]int),
		CappedByCategory: make(map[types.SpeciesID]map[types.RuleCategory]int),
		PositiveRaw:      make(map[types.SpeciesID]int),
		PositiveCapped:   make(map[types.SpeciesID]int),
		NegativeTotal:    make(map[types.SpeciesID]int),
		FinalRuleBonus:   make(map[types.SpeciesID]int),
	}
}

// EvaluateRules runs the compiled rule table against one context and
// applies category-based capping. rules must already be priority-sorted
// (CompileRules guarantees this). speciesList defaults to the tier-1
// set when nil. Deterministic: identical inputs produce identical
// results.
func EvaluateRules(rules []CompiledRule, ctx *Context, speciesList []types.SpeciesID, caps types.RuleBonusCaps) *RuleResult {
	if speciesList == nil {
		speciesList = types.TierOneSpecies
	}

	result := newRuleResult()

	// species -> category -> raw bonus sum, pre-cap
	catBonuses := make(map[types.SpeciesID]map[types.RuleCategory]int)

	for i := range rules {
		rule := &rules[i]
		if !rule.Enabled {
			continue
		}
		if !rule.fires(ctx) {
			continue
		}

		result.FiredRuleCount++

		wmStrength := 1.0
		if rule.ScaleByWaterMass {
			wmStrength = ctx.WaterMass.Strength
		}

		var affected []types.SpeciesID
		appliedTotal := 0

		for _, effect := range rule.Effects {
			bonus := effect.ScoreBonus
			if rule.ScaleByWaterMass {
				bonus = int(math.Round(float64(effect.ScoreBonus) * wmStrength))
			}
			appliedTotal += effect.ScoreBonus

			targets := resolveTargets(effect.ApplyToSpecies, speciesList)

			for _, sp := range targets {
				if catBonuses[sp] == nil {
					catBonuses[sp] = make(map[types.RuleCategory]int)
				}
				catBonuses[sp][rule.Category] += bonus
				result.SpeciesBonuses[sp] += bonus

				for _, th := range effect.TechniqueHints {
					result.TechniqueHints[sp] = appendUniqueTechnique(result.TechniqueHints[sp], th)
				}
				for _, rt := range effect.RemoveFromTechniques {
					result.RemoveTechniques[sp] = appendUniqueTechnique(result.RemoveTechniques[sp], rt)
				}

				if effect.ModeHint != "" {
					current, exists := result.ModeHints[sp]
					if !exists || rule.Priority > current.Priority ||
						(rule.Priority == current.Priority && effect.ModeHint < current.Mode) {
						result.ModeHints[sp] = modeHint{Priority: rule.Priority, Mode: effect.ModeHint}
					}
				}

				affected = append(affected, sp)
			}

			if effect.NoGo {
				result.IsNoGo = true
				if !containsString(result.NoGoReasons, rule.MessageTR) {
					result.NoGoReasons = append(result.NoGoReasons, rule.MessageTR)
				}
			}
		}

		if rule.MessageTR != "" {
			result.Messages = append(result.Messages, priorityMessage{Priority: rule.Priority, Message: rule.MessageTR})
		}

		result.ActiveRules = append(result.ActiveRules, types.FiredRule{
			RuleID:       rule.ID,
			Category:     rule.Category,
			AppliedBonus: appliedTotal,
			Species:      uniqueSpecies(affected),
			Message:      rule.MessageTR,
		})
	}

	applyCategoryCaps(result, catBonuses, caps)
	applyTechniqueRemovals(result)

	return result
}

// fires reports whether every predicate of the rule holds.
func (r *CompiledRule) fires(ctx *Context) bool {
	for i := range r.Predicates {
		if !r.Predicates[i].eval(ctx) {
			return false
		}
	}
	return true
}

// resolveTargets expands an effect's species selector. A wildcard
// targets the full scored list; explicit entries must name a known
// species but may reach beyond the scored list (tier-2 hints).
func resolveTargets(applyTo []string, speciesList []types.SpeciesID) []types.SpeciesID {
	if len(applyTo) == 0 {
		applyTo = []string{"*"}
	}
	for _, a := range applyTo {
		if a == "*" {
			return speciesList
		}
	}

	var out []types.SpeciesID
	for _, a := range applyTo {
		sp := types.SpeciesID(a)
		if containsSpecies(speciesList, sp) || containsSpecies(types.AllSpecies, sp) {
			out = append(out, sp)
		}
	}
	return out
}

// applyCategoryCaps runs the capping pass once, after all rules have
// accumulated: per-category positive totals are capped independently,
// the capped positives are summed and capped again by totalCap, and
// negatives pass through uncapped.
func applyCategoryCaps(result *RuleResult, catBonuses map[types.SpeciesID]map[types.RuleCategory]int, caps types.RuleBonusCaps) {
	species := make([]types.SpeciesID, 0, len(result.SpeciesBonuses))
	for sp := range result.SpeciesBonuses {
		species = append(species, sp)
	}
	sort.Slice(species, func(i, j int) bool { return species[i] < species[j] })

	for _, sp := range species {
		spCats := catBonuses[sp]

		raw := make(map[types.RuleCategory]int, len(spCats))
		capped := make(map[types.RuleCategory]int, len(spCats))
		positiveTotal := 0
		negativeTotal := 0

		for cat, rawBonus := range spCats {
			raw[cat] = rawBonus
			c := rawBonus
			if rawBonus > 0 {
				if cat != types.CategoryAbsolute {
					c = min(rawBonus, caps.CapFor(cat))
				}
				positiveTotal += c
			} else {
				negativeTotal += c
			}
			capped[cat] = c
		}

		cappedPositive := min(positiveTotal, caps.TotalCap)
		final := cappedPositive + negativeTotal

		result.RawByCategory[sp] = raw
		result.CappedByCategory[sp] = capped
		result.PositiveRaw[sp] = positiveTotal
		result.PositiveCapped[sp] = cappedPositive
		result.NegativeTotal[sp] = negativeTotal
		result.FinalRuleBonus[sp] = final
		result.SpeciesBonuses[sp] = final
	}
}

// applyTechniqueRemovals strips removed techniques from hint lists
// after all merging, regardless of which rule added them.
func applyTechniqueRemovals(result *RuleResult) {
	for sp, hints := range result.TechniqueHints {
		removes := result.RemoveTechniques[sp]
		if len(removes) == 0 {
			continue
		}
		kept := hints[:0]
		for _, t := range hints {
			if !containsTechnique(removes, t) {
				kept = append(kept, t)
			}
		}
		result.TechniqueHints[sp] = kept
	}
}

// CombinedMessages joins the fired rules' messages, priority
// descending, deduplicated, " | " separated.
func CombinedMessages(result *RuleResult) string {
	msgs := make([]priorityMessage, len(result.Messages))
	copy(msgs, result.Messages)
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Priority > msgs[j].Priority })

	var unique []string
	for _, m := range msgs {
		if !containsString(unique, m.Message) {
			unique = append(unique, m.Message)
		}
	}
	return strings.Join(unique, " | ")
}

func appendUniqueTechnique(list []types.TechniqueID, t types.TechniqueID) []types.TechniqueID {
	if containsTechnique(list, t) {
		return list
	}
	return append(list, t)
}

func containsTechnique(list []types.TechniqueID, t types.TechniqueID) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

func containsSpecies(list []types.SpeciesID, sp types.SpeciesID) bool {
	for _, v := range list {
		if v == sp {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func uniqueSpecies(list []types.SpeciesID) []types.SpeciesID {
	var out []types.SpeciesID
	for _, sp := range list {
		if !containsSpecies(out, sp) {
			out = append(out, sp)
		}
	}
	return out
}
