// Package engine implements the decision pipeline: rule evaluation,
// species scoring, mode classification, and daily decision assembly.
// Everything in this package is pure and synchronous. No I/O, no
// clocks, no logging; instants and snapshots are passed in by the
// caller and config tables are read-only for the duration of a run.
package engine

import (
	"math"
	"strings"

	"fishcast/internal/types"
)

// cardinal8 is the canonical 8-point compass, clockwise from north.
var cardinal8 = [8]types.WindCardinal{
	types.WindN, types.WindNE, types.WindE, types.WindSE,
	types.WindS, types.WindSW, types.WindW, types.WindNW,
}

// normalizeMap folds 16-point and alternate forms onto the canonical
// 8-point set.
var normalizeMap = map[string]types.WindCardinal{
	"NNE": types.WindNE,
	"ENE": types.WindNE,
	"ESE": types.WindSE,
	"SSE": types.WindSE,
	"SSW": types.WindSW,
	"WSW": types.WindSW,
	"WNW": types.WindNW,
	"NNW": types.WindNW,
}

// DegreesToCardinal8 converts meteorological degrees to the nearest
// 8-point cardinal. 0 is N, 45 is NE, and so on clockwise.
func DegreesToCardinal8(deg float64) types.WindCardinal {
	idx := int(math.Round(deg/45)) % 8
	if idx < 0 {
		idx += 8
	}
	return cardinal8[idx]
}

// NormalizeCardinal8 maps any cardinal string (16-point forms included,
// any case) onto the canonical 8-point set. Already-canonical values
// pass through unchanged.
func NormalizeCardinal8(card string) types.WindCardinal {
	upper := strings.ToUpper(strings.TrimSpace(card))
	if c, ok := normalizeMap[upper]; ok {
		return c
	}
	return types.WindCardinal(upper)
}
