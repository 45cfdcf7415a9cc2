package catalog

import (
	"fmt"
	"math"

	"fishcast/internal/types"
)

// Known enum value sets for structural validation. The engine trusts
// the catalog, so every reference is checked here, once, at load.
var (
	knownRegions = map[types.RegionID]bool{
		types.RegionAvrupa:   true,
		types.RegionAnadolu:  true,
		types.RegionCityBelt: true,
	}
	knownShores = map[types.Shore]bool{
		types.ShoreEuropean:  true,
		types.ShoreAnatolian: true,
		types.ShoreIslands:   true,
	}
	knownAccuracies = map[types.CoordAccuracy]bool{
		types.CoordSurveyed:    true,
		types.CoordApproximate: true,
	}
	knownModes = map[types.SpeciesMode]bool{
		types.ModeChasing:   true,
		types.ModeSelective: true,
		types.ModeHolding:   true,
	}
	knownCategories = map[types.RuleCategory]bool{
		types.CategoryAbsolute:      true,
		types.CategoryWindCoast:     true,
		types.CategoryWeatherMode:   true,
		types.CategoryIstanbul:      true,
		types.CategoryTechniqueTime: true,
	}
	knownCardinals = map[types.WindCardinal]bool{
		types.WindN: true, types.WindNE: true, types.WindE: true, types.WindSE: true,
		types.WindS: true, types.WindSW: true, types.WindW: true, types.WindNW: true,
	}
)

func invalid(format string, args ...any) error {
	return types.NewAppError(types.ErrCodeInternalCatalog, fmt.Sprintf(format, args...), nil)
}

// validate checks the loaded data set structurally. It runs before
// indexes are built, so it only relies on the raw slices.
func (c *Catalog) validate() error {
	knownSpecies := make(map[types.SpeciesID]bool, len(c.species))
	knownTechniques := make(map[types.TechniqueID]bool, len(c.techniques))

	seenTechniques := map[types.TechniqueID]bool{}
	for i := range c.techniques {
		t := &c.techniques[i]
		if t.ID == "" {
			return invalid("technique %d has no id", i)
		}
		if seenTechniques[t.ID] {
			return invalid("duplicate technique id %q", t.ID)
		}
		seenTechniques[t.ID] = true
		knownTechniques[t.ID] = true
	}

	seenSpecies := map[types.SpeciesID]bool{}
	for i := range c.species {
		sp := &c.species[i]
		if sp.ID == "" {
			return invalid("species %d has no id", i)
		}
		if seenSpecies[sp.ID] {
			return invalid("duplicate species id %q", sp.ID)
		}
		seenSpecies[sp.ID] = true
		if sp.Tier != 1 && sp.Tier != 2 {
			return invalid("species %q has invalid tier %d", sp.ID, sp.Tier)
		}
		knownSpecies[sp.ID] = true
	}

	// Every tier-1 species the engine scores must exist in the file.
	for _, sp := range types.TierOneSpecies {
		if !knownSpecies[sp] {
			return invalid("tier-1 species %q missing from species file", sp)
		}
	}

	if err := c.validateSpots(knownSpecies, knownTechniques); err != nil {
		return err
	}
	if err := c.validateRules(knownSpecies, knownTechniques); err != nil {
		return err
	}
	if err := c.validateScoring(knownSpecies); err != nil {
		return err
	}
	return c.validateSeasonality(knownSpecies)
}

func (c *Catalog) validateSpots(knownSpecies map[types.SpeciesID]bool, knownTechniques map[types.TechniqueID]bool) error {
	seen := map[string]bool{}
	for i := range c.spots {
		spot := &c.spots[i]
		if spot.ID == "" {
			return invalid("spot %d has no id", i)
		}
		if seen[spot.ID] {
			return invalid("duplicate spot id %q", spot.ID)
		}
		seen[spot.ID] = true

		if !knownRegions[spot.Region] {
			return invalid("spot %q has unknown region %q", spot.ID, spot.Region)
		}
		if !knownShores[spot.Shore] {
			return invalid("spot %q has unknown shore %q", spot.ID, spot.Shore)
		}
		if !knownAccuracies[spot.CoordAccuracy] {
			return invalid("spot %q has unknown coord accuracy %q", spot.ID, spot.CoordAccuracy)
		}
		for _, sp := range spot.PrimarySpecies {
			if !knownSpecies[sp] {
				return invalid("spot %q references unknown species %q", spot.ID, sp)
			}
		}
		for _, t := range spot.TechniqueBias {
			if !knownTechniques[t] {
				return invalid("spot %q references unknown technique %q", spot.ID, t)
			}
		}
		for _, card := range spot.ShelteredFrom {
			if !knownCardinals[card] {
				return invalid("spot %q has unknown cardinal %q in sheltered_from", spot.ID, card)
			}
		}
	}
	return nil
}

func (c *Catalog) validateRules(knownSpecies map[types.SpeciesID]bool, knownTechniques map[types.TechniqueID]bool) error {
	seen := map[string]bool{}
	for i := range c.ruleDefs {
		rule := &c.ruleDefs[i]
		if rule.ID == "" {
			return invalid("rule %d has no id", i)
		}
		if seen[rule.ID] {
			return invalid("duplicate rule id %q", rule.ID)
		}
		seen[rule.ID] = true

		if rule.Priority < 1 || rule.Priority > 10 {
			return invalid("rule %q has priority %d outside 1-10", rule.ID, rule.Priority)
		}
		if rule.Category != "" && !knownCategories[rule.Category] {
			return invalid("rule %q has unknown category %q", rule.ID, rule.Category)
		}
		if len(rule.Effects) == 0 {
			return invalid("rule %q has no effects", rule.ID)
		}

		for j, effect := range rule.Effects {
			for _, target := range effect.ApplyToSpecies {
				if target == "*" {
					continue
				}
				if !knownSpecies[types.SpeciesID(target)] {
					return invalid("rule %q effect %d targets unknown species %q", rule.ID, j, target)
				}
			}
			for _, t := range effect.TechniqueHints {
				if !knownTechniques[t] {
					return invalid("rule %q effect %d hints unknown technique %q", rule.ID, j, t)
				}
			}
			for _, t := range effect.RemoveFromTechniques {
				if !knownTechniques[t] {
					return invalid("rule %q effect %d removes unknown technique %q", rule.ID, j, t)
				}
			}
			if effect.ModeHint != "" && !knownModes[effect.ModeHint] {
				return invalid("rule %q effect %d has unknown mode hint %q", rule.ID, j, effect.ModeHint)
			}
		}

		if months, ok := rule.Condition["month"]; ok {
			if err := validateMonths(rule.ID, months); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateMonths(ruleID string, v any) error {
	check := func(m any) error {
		n, ok := asInt(m)
		if !ok || n < 1 || n > 12 {
			return invalid("rule %q has month value %v outside 1-12", ruleID, m)
		}
		return nil
	}
	if list, ok := v.([]any); ok {
		for _, m := range list {
			if err := check(m); err != nil {
				return err
			}
		}
		return nil
	}
	return check(v)
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		if t == math.Trunc(t) {
			return int(t), true
		}
	}
	return 0, false
}

func (c *Catalog) validateScoring(knownSpecies map[types.SpeciesID]bool) error {
	if len(c.scoring.SpeciesWeights) == 0 {
		return invalid("scoring file has no species weights")
	}

	for sp, weights := range c.scoring.SpeciesWeights {
		if !knownSpecies[sp] {
			return invalid("scoring weights reference unknown species %q", sp)
		}
		if diff := math.Abs(weights.Sum() - 1.0); diff > 1e-9 {
			return invalid("weights for %q sum to %.4f, want 1.0", sp, weights.Sum())
		}
	}

	// Every scored species needs a weight row.
	for _, sp := range types.TierOneSpecies {
		if _, ok := c.scoring.SpeciesWeights[sp]; !ok {
			return invalid("tier-1 species %q has no scoring weights", sp)
		}
	}

	for sp, band := range c.scoring.SpeciesTemp {
		if !knownSpecies[sp] {
			return invalid("temp band references unknown species %q", sp)
		}
		if band.Min > band.Max {
			return invalid("temp band for %q has min %.1f above max %.1f", sp, band.Min, band.Max)
		}
		if band.PenaltyDivisor <= 0 {
			return invalid("temp band for %q has non-positive penalty divisor", sp)
		}
	}

	for sp, ranges := range c.scoring.SpeciesBestHours {
		if !knownSpecies[sp] {
			return invalid("best hours reference unknown species %q", sp)
		}
		for _, r := range ranges {
			if r.Start < 0 || r.Start > 23 || r.End < 0 || r.End > 23 {
				return invalid("best hours for %q have out-of-range hour", sp)
			}
		}
	}

	caps := c.scoring.RuleBonusCaps
	if caps.TotalCap <= 0 {
		return invalid("rule bonus total cap must be positive")
	}
	if caps.NegativeFloor >= 0 {
		return invalid("rule bonus negative floor must be negative")
	}

	for _, dq := range []types.DataQuality{types.DataQualityLive, types.DataQualityCached, types.DataQualityFallback} {
		if _, ok := c.scoring.ConfidenceFactors.DataQualityBase[dq]; !ok {
			return invalid("confidence factors missing data quality base for %q", dq)
		}
	}

	wm := c.scoring.WaterMassProxy
	if wm.WeakThresholdKmh >= wm.StrongThresholdKmh {
		return invalid("water mass weak threshold must be below strong threshold")
	}

	return nil
}

func (c *Catalog) validateSeasonality(knownSpecies map[types.SpeciesID]bool) error {
	for sp, season := range c.seasonality.Species {
		if !knownSpecies[sp] {
			return invalid("seasonality references unknown species %q", sp)
		}
		for _, list := range [][]int{season.PeakMonths, season.ShoulderMonths, season.OffMonths} {
			for _, m := range list {
				if m < 1 || m > 12 {
					return invalid("seasonality for %q has month %d outside 1-12", sp, m)
				}
			}
		}
	}
	for _, sp := range types.TierOneSpecies {
		if _, ok := c.seasonality.Species[sp]; !ok {
			return invalid("tier-1 species %q missing from seasonality", sp)
		}
	}
	return nil
}
