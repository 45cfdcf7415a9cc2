package engine

import (
	"sort"
	"strconv"
	"strings"

	"fishcast/internal/types"
)

// Rule conditions arrive from the data file as a string-keyed map of
// loosely typed values. They are compiled exactly once, at catalog
// load, into the closed predicate set below; evaluation dispatches on
// the variant tag and never re-parses strings. A condition entry that
// cannot be compiled (malformed operand, bad time range) becomes a
// never-true predicate: the rule simply cannot fire, evaluation never
// fails.

type predicateKind int

const (
	predAlwaysTrue predicateKind = iota
	predNeverTrue
	predComparison
	predRange
	predTimeWindow
	predMonthSet
	predMembership
	predBoolean
	predFeatureTag
	predEquality
)

type comparisonOp int

const (
	opGT comparisonOp = iota
	opGTE
	opLT
	opLTE
)

// predicate is one compiled condition entry. All entries of a rule
// must hold (AND) for the rule to fire.
type predicate struct {
	kind  predicateKind
	field string

	op      comparisonOp
	operand float64

	rangeMin float64
	rangeMax float64

	startMin int
	endMin   int

	months []int

	members []string

	wantBool bool

	tag string

	equals any
}

// boolFields are the context fields compared as booleans.
var boolFields = map[string]bool{
	"pelagicCorridor": true,
	"after_rain":      true,
	"isDaylight":      true,
}

// compileCondition turns one raw condition map into its predicate list.
// Output order is deterministic (sorted by field name) so compiled
// rulesets are stable across loads.
func compileCondition(condition map[string]any) []predicate {
	fields := make([]string, 0, len(condition))
	for f := range condition {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	preds := make([]predicate, 0, len(fields))
	for _, field := range fields {
		preds = append(preds, compileEntry(field, condition[field]))
	}
	return preds
}

func compileEntry(field string, expected any) predicate {
	switch {
	case field == "time":
		return compileTimeWindow(field, expected)

	case field == "month":
		return compileMonthSet(field, expected)

	case strings.HasSuffix(field, "_range"):
		return compileRange(strings.TrimSuffix(field, "_range"), expected)

	case field == "features_include":
		tag, ok := expected.(string)
		if !ok {
			return predicate{kind: predNeverTrue, field: field}
		}
		return predicate{kind: predFeatureTag, field: field, tag: tag}

	case field == "species_in_context":
		// Species scoping is applied per effect, not here.
		return predicate{kind: predAlwaysTrue, field: field}

	case boolFields[field]:
		return predicate{kind: predBoolean, field: field, wantBool: truthy(expected)}
	}

	if s, ok := expected.(string); ok && s != "" && strings.ContainsRune("><=", rune(s[0])) {
		return compileComparison(field, s)
	}

	if list, ok := expected.([]any); ok {
		members := make([]string, 0, len(list))
		for _, m := range list {
			members = append(members, stringify(m))
		}
		return predicate{kind: predMembership, field: field, members: members}
	}

	return predicate{kind: predEquality, field: field, equals: expected}
}

func compileComparison(field, expr string) predicate {
	var op comparisonOp
	var rest string
	switch {
	case strings.HasPrefix(expr, ">="):
		op, rest = opGTE, expr[2:]
	case strings.HasPrefix(expr, "<="):
		op, rest = opLTE, expr[2:]
	case strings.HasPrefix(expr, ">"):
		op, rest = opGT, expr[1:]
	case strings.HasPrefix(expr, "<"):
		op, rest = opLT, expr[1:]
	default:
		return predicate{kind: predNeverTrue, field: field}
	}

	operand, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
	if err != nil {
		return predicate{kind: predNeverTrue, field: field}
	}
	return predicate{kind: predComparison, field: field, op: op, operand: operand}
}

func compileTimeWindow(field string, expected any) predicate {
	s, ok := expected.(string)
	if !ok {
		return predicate{kind: predNeverTrue, field: field}
	}
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return predicate{kind: predNeverTrue, field: field}
	}
	start, ok1 := parseHHMM(strings.TrimSpace(parts[0]))
	end, ok2 := parseHHMM(strings.TrimSpace(parts[1]))
	if !ok1 || !ok2 {
		return predicate{kind: predNeverTrue, field: field}
	}
	return predicate{kind: predTimeWindow, field: field, startMin: start, endMin: end}
}

func compileMonthSet(field string, expected any) predicate {
	switch v := expected.(type) {
	case int:
		return predicate{kind: predMonthSet, field: field, months: []int{v}}
	case []any:
		months := make([]int, 0, len(v))
		for _, m := range v {
			n, ok := toInt(m)
			if !ok {
				return predicate{kind: predNeverTrue, field: field}
			}
			months = append(months, n)
		}
		return predicate{kind: predMonthSet, field: field, months: months}
	default:
		if n, ok := toInt(expected); ok {
			return predicate{kind: predMonthSet, field: field, months: []int{n}}
		}
		return predicate{kind: predNeverTrue, field: field}
	}
}

func compileRange(baseField string, expected any) predicate {
	list, ok := expected.([]any)
	if !ok || len(list) != 2 {
		return predicate{kind: predNeverTrue, field: baseField}
	}
	lo, ok1 := toFloat(list[0])
	hi, ok2 := toFloat(list[1])
	if !ok1 || !ok2 {
		return predicate{kind: predNeverTrue, field: baseField}
	}
	return predicate{kind: predRange, field: baseField, rangeMin: lo, rangeMax: hi}
}

// eval dispatches on the predicate variant against the context.
func (p *predicate) eval(ctx *Context) bool {
	switch p.kind {
	case predAlwaysTrue:
		return true
	case predNeverTrue:
		return false

	case predComparison:
		actual, ok := ctx.numeric(p.field)
		if !ok {
			return false
		}
		switch p.op {
		case opGT:
			return actual > p.operand
		case opGTE:
			return actual >= p.operand
		case opLT:
			return actual < p.operand
		case opLTE:
			return actual <= p.operand
		}
		return false

	case predRange:
		actual, ok := ctx.numeric(p.field)
		if !ok {
			return false
		}
		return actual >= p.rangeMin && actual <= p.rangeMax

	case predTimeWindow:
		current := ctx.Hour*60 + ctx.Minute
		if p.startMin <= p.endMin {
			return current >= p.startMin && current <= p.endMin
		}
		return current >= p.startMin || current <= p.endMin

	case predMonthSet:
		for _, m := range p.months {
			if ctx.Month == m {
				return true
			}
		}
		return false

	case predMembership:
		actual, ok := ctx.str(p.field)
		if !ok {
			if n, nok := ctx.numeric(p.field); nok {
				actual = formatNumber(n)
			} else {
				return false
			}
		}
		for _, m := range p.members {
			if actual == m {
				return true
			}
		}
		return false

	case predBoolean:
		actual, ok := ctx.boolean(p.field)
		if !ok {
			return false
		}
		return actual == p.wantBool

	case predFeatureTag:
		for _, f := range ctx.Features {
			if f == p.tag {
				return true
			}
		}
		return false

	case predEquality:
		if want, ok := toFloat(p.equals); ok {
			actual, aok := ctx.numeric(p.field)
			return aok && actual == want
		}
		if want, ok := p.equals.(bool); ok {
			actual, aok := ctx.boolean(p.field)
			return aok && actual == want
		}
		if want, ok := p.equals.(string); ok {
			actual, aok := ctx.str(p.field)
			return aok && actual == want
		}
		return false
	}
	return false
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "yes"
	default:
		if n, ok := toFloat(v); ok {
			return n != 0
		}
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case types.WindCardinal:
		return string(t)
	default:
		if f, ok := toFloat(v); ok {
			return formatNumber(f)
		}
		return ""
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
