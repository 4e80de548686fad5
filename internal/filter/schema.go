package filter

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/yegors/vatmap/internal/model"
)

// fieldKind is the value type a queryable field produces
type fieldKind int

const (
	fieldString fieldKind = iota
	fieldNumber
)

func (k fieldKind) String() string {
	if k == fieldString {
		return "string"
	}
	return "number"
}

// fieldSpec binds a query identifier to a pilot attribute. The ok result
// of an accessor is false when the attribute's source is absent (e.g. a
// flight plan field on a pilot without a plan); such conditions evaluate
// to false instead of failing.
type fieldSpec struct {
	kind fieldKind
	str  func(p *model.Pilot) (string, bool)
	num  func(p *model.Pilot) (float64, bool)
}

var pilotFields = map[string]fieldSpec{
	"callsign": {kind: fieldString, str: func(p *model.Pilot) (string, bool) { return p.Callsign, true }},
	"name":     {kind: fieldString, str: func(p *model.Pilot) (string, bool) { return p.Name, true }},
	"server":   {kind: fieldString, str: func(p *model.Pilot) (string, bool) { return p.Server, true }},
	"transponder": {kind: fieldString, str: func(p *model.Pilot) (string, bool) {
		return p.Transponder, true
	}},
	"cid":     {kind: fieldNumber, num: func(p *model.Pilot) (float64, bool) { return float64(p.CID), true }},
	"alt":     {kind: fieldNumber, num: func(p *model.Pilot) (float64, bool) { return float64(p.Altitude), true }},
	"gs":      {kind: fieldNumber, num: func(p *model.Pilot) (float64, bool) { return float64(p.Groundspeed), true }},
	"heading": {kind: fieldNumber, num: func(p *model.Pilot) (float64, bool) { return float64(p.Heading), true }},
	"lat":     {kind: fieldNumber, num: func(p *model.Pilot) (float64, bool) { return p.Position.Lat, true }},
	"lng":     {kind: fieldNumber, num: func(p *model.Pilot) (float64, bool) { return p.Position.Lng, true }},
	"rules": {kind: fieldString, str: func(p *model.Pilot) (string, bool) {
		if p.FlightPlan == nil {
			return "", false
		}
		return p.FlightPlan.FlightRules, true
	}},
	"aircraft": {kind: fieldString, str: func(p *model.Pilot) (string, bool) {
		if p.FlightPlan == nil {
			return "", false
		}
		return p.FlightPlan.Aircraft, true
	}},
	"departure": {kind: fieldString, str: func(p *model.Pilot) (string, bool) {
		if p.FlightPlan == nil {
			return "", false
		}
		return p.FlightPlan.Departure, true
	}},
	"arrival": {kind: fieldString, str: func(p *model.Pilot) (string, bool) {
		if p.FlightPlan == nil {
			return "", false
		}
		return p.FlightPlan.Arrival, true
	}},
}

// Fields returns the sorted list of queryable field names
func Fields() []string {
	names := make([]string, 0, len(pilotFields))
	for name := range pilotFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// compileCondition binds one parsed comparison to the pilot schema. All
// type checking happens here: an expression that compiles can never fail
// at evaluation time.
func compileCondition(ident string, op operator, val literal) (node, error) {
	spec, ok := pilotFields[ident]
	if !ok {
		return nil, &CompileError{msg: fmt.Sprintf(
			"unknown field %q, valid fields are [%s]", ident, strings.Join(Fields(), ", "))}
	}

	// Flight rules are stored normalized (I/V); accept the common
	// spellings and reject everything else up front.
	if ident == "rules" {
		if op != opEquals && op != opNotEquals {
			return nil, &CompileError{msg: "field \"rules\" supports only = and !="}
		}
		if val.kind != literalString {
			return nil, &CompileError{msg: fmt.Sprintf("invalid rules value type %s, expected string", val.kind)}
		}
		switch strings.ToLower(val.s) {
		case "i", "ifr":
			val.s = "I"
		case "v", "vfr":
			val.s = "V"
		default:
			return nil, &CompileError{msg: "invalid rules value, valid ones are ['v', 'i', 'vfr', 'ifr']"}
		}
	}

	switch spec.kind {
	case fieldString:
		if val.kind != literalString {
			return nil, &CompileError{msg: fmt.Sprintf(
				"field %q is a string, cannot compare with %s literal", ident, val.kind)}
		}
		get := spec.str
		switch op {
		case opEquals:
			want := val.s
			return condNode(func(p *model.Pilot) bool {
				v, ok := get(p)
				return ok && v == want
			}), nil
		case opNotEquals:
			want := val.s
			return condNode(func(p *model.Pilot) bool {
				v, ok := get(p)
				return ok && v != want
			}), nil
		case opMatches, opNotMatches:
			re, err := regexp.Compile(val.s)
			if err != nil {
				return nil, &CompileError{msg: fmt.Sprintf("invalid regular expression %q: %v", val.s, err)}
			}
			negate := op == opNotMatches
			return condNode(func(p *model.Pilot) bool {
				v, ok := get(p)
				return ok && re.MatchString(v) != negate
			}), nil
		default:
			return nil, &CompileError{msg: fmt.Sprintf(
				"field %q is a string, operator %s needs a numeric field", ident, op)}
		}

	default: // fieldNumber
		if val.kind == literalString {
			return nil, &CompileError{msg: fmt.Sprintf(
				"field %q is numeric, cannot compare with string literal", ident)}
		}
		if op == opMatches || op == opNotMatches {
			return nil, &CompileError{msg: fmt.Sprintf(
				"field %q is numeric, operator %s needs a string field", ident, op)}
		}
		want := val.asFloat()
		get := spec.num
		return condNode(func(p *model.Pilot) bool {
			v, ok := get(p)
			if !ok {
				return false
			}
			switch op {
			case opEquals:
				return v == want
			case opNotEquals:
				return v != want
			case opLess:
				return v < want
			case opLessOrEqual:
				return v <= want
			case opGreater:
				return v > want
			default:
				return v >= want
			}
		}), nil
	}
}
