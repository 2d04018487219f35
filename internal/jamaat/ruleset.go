package jamaat

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RuleSet maps each prayer to its congregation rule.
type RuleSet map[Prayer]Rule

// DefaultRule returns the rule used when a RuleSet has no usable entry for p.
func DefaultRule(p Prayer) Rule {
	switch p {
	case Fajr:
		return Offset{Minutes: 20}
	case Maghrib:
		return Offset{Minutes: 5}
	case Jumuah:
		return Fixed{Hour12: 1, Minute: 30, PM: true}
	default:
		return Offset{Minutes: 10}
	}
}

// DefaultRuleSet returns a complete rule set built from DefaultRule.
func DefaultRuleSet() RuleSet {
	rs := make(RuleSet, len(Prayers))
	for _, p := range Prayers {
		rs[p] = DefaultRule(p)
	}
	return rs
}

// Rule returns the rule for p, or DefaultRule(p) if the entry is missing or nil.
func (rs RuleSet) Rule(p Prayer) Rule {
	if r, ok := rs[p]; ok && r != nil {
		return r
	}
	return DefaultRule(p)
}

// With returns a copy of rs with p set to r.
func (rs RuleSet) With(p Prayer, r Rule) RuleSet {
	out := make(RuleSet, len(rs)+1)
	for k, v := range rs {
		out[k] = v
	}
	out[p] = r
	return out
}

// Format encodes the rule set in its single-line storage form, e.g.
//
//	Fajr:O:20|Dhuhr:O:10|Asr:O:10|Maghrib:O:5|Isha:O:10|Jumuah:F:1,30,PM
//
// Entries appear in canonical prayer order; missing entries are omitted.
func (rs RuleSet) Format() string {
	parts := make([]string, 0, len(Prayers))
	for _, p := range Prayers {
		r, ok := rs[p]
		if !ok || r == nil {
			continue
		}
		parts = append(parts, p.String()+":"+encodeRule(r))
	}
	return strings.Join(parts, "|")
}

func encodeRule(r Rule) string {
	switch r := r.(type) {
	case Offset:
		return "O:" + strconv.Itoa(max(r.Minutes, 0))
	case Fixed:
		return fmt.Sprintf("F:%d,%d,%s", clampInt(r.Hour12, 1, 12), clampInt(r.Minute, 0, 59), meridiem(r.PM))
	default:
		return ""
	}
}

// ParseRuleSet decodes the storage form produced by Format. It never fails:
// malformed tokens are skipped, fixed hours and minutes are clamped into range,
// and input with no usable token yields DefaultRuleSet.
func ParseRuleSet(raw string) RuleSet {
	rs := make(RuleSet)
	for _, token := range strings.Split(raw, "|") {
		name, rest, ok := strings.Cut(strings.TrimSpace(token), ":")
		if !ok {
			continue
		}
		p, err := ParsePrayer(name)
		if err != nil {
			continue
		}
		if r, ok := decodeRule(rest); ok {
			rs[p] = r
		}
	}
	if len(rs) == 0 {
		return DefaultRuleSet()
	}
	return rs
}

// ParseRuleLine is the strict counterpart of ParseRuleSet for user input: every
// "Prayer:rule" token must name a prayer and carry a rule accepted by
// ParseRule. Only the prayers present in raw are set.
func ParseRuleLine(raw string) (RuleSet, error) {
	rs := make(RuleSet)
	for _, token := range strings.Split(raw, "|") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		name, rest, ok := strings.Cut(token, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q: want Prayer:rule", ErrInvalidRule, token)
		}
		p, err := ParsePrayer(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidRule, token, err)
		}
		r, err := ParseRule(rest)
		if err != nil {
			return nil, err
		}
		rs[p] = r
	}
	if len(rs) == 0 {
		return nil, fmt.Errorf("%w: %q: no rules", ErrInvalidRule, raw)
	}
	return rs, nil
}

func decodeRule(s string) (Rule, bool) {
	kind, body, _ := strings.Cut(s, ":")
	switch strings.ToUpper(strings.TrimSpace(kind)) {
	case "O":
		n, err := strconv.Atoi(strings.TrimSpace(body))
		if err != nil || n < 0 {
			return nil, false
		}
		return Offset{Minutes: n}, true
	case "F":
		parts := strings.Split(body, ",")
		if len(parts) < 3 {
			return nil, false
		}
		h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			h = 1
		}
		m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			m = 30
		}
		return Fixed{
			Hour12: clampInt(h, 1, 12),
			Minute: clampInt(m, 0, 59),
			PM:     strings.EqualFold(strings.TrimSpace(parts[2]), "PM"),
		}, true
	default:
		return nil, false
	}
}

var (
	offsetPattern = regexp.MustCompile(`^\+?(\d+)\s*(m|min|mins|minutes)?$`)
	clockPattern  = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([aApP][mM])?$`)
)

// ParseRule parses a single rule from user input. Accepted forms:
//
//	O:20  +20  20m  20      offset in minutes
//	F:1,30,PM  1:30 PM      fixed 12-hour clock time
//	13:30                   fixed 24-hour clock time
func ParseRule(s string) (Rule, error) {
	in := strings.TrimSpace(s)
	if r, ok := decodeRule(in); ok {
		if _, fixed := r.(Fixed); fixed && !validFixedToken(in) {
			return nil, fmt.Errorf("%w: %q: hour must be 1-12 and minute 0-59", ErrInvalidRule, s)
		}
		return r, nil
	}

	if match := offsetPattern.FindStringSubmatch(in); match != nil {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRule, s, err)
		}
		return Offset{Minutes: n}, nil
	}

	if match := clockPattern.FindStringSubmatch(in); match != nil {
		h, _ := strconv.Atoi(match[1])
		mm, _ := strconv.Atoi(match[2])
		if mm > 59 {
			return nil, fmt.Errorf("%w: %q: minute must be 0-59", ErrInvalidRule, s)
		}
		if match[3] == "" {
			if h > 23 {
				return nil, fmt.Errorf("%w: %q: hour must be 0-23", ErrInvalidRule, s)
			}
			return fixedFrom24(h, mm), nil
		}
		if h < 1 || h > 12 {
			return nil, fmt.Errorf("%w: %q: hour must be 1-12", ErrInvalidRule, s)
		}
		return Fixed{Hour12: h, Minute: mm, PM: strings.EqualFold(match[3], "PM")}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidRule, s)
}

// validFixedToken reports whether an "F:h,m,ampm" token is in range without clamping.
func validFixedToken(s string) bool {
	_, body, _ := strings.Cut(s, ":")
	parts := strings.Split(body, ",")
	h, errH := strconv.Atoi(strings.TrimSpace(parts[0]))
	m, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
	ampm := strings.ToUpper(strings.TrimSpace(parts[2]))
	return errH == nil && errM == nil && h >= 1 && h <= 12 && m >= 0 && m <= 59 && (ampm == "AM" || ampm == "PM")
}

func fixedFrom24(h, m int) Fixed {
	pm := h >= 12
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return Fixed{Hour12: h12, Minute: m, PM: pm}
}
