package generator

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledger-synth/internal/catalog"
)

// Trigger kinds
const (
	TriggerDaysOfMonth = "days_of_month"
	TriggerWeekdays    = "weekdays"
	TriggerEveryNDays  = "every_n_days"
	TriggerProbability = "probability"
)

// Amount kinds
const (
	AmountFixed    = "fixed"
	AmountUniform  = "uniform"
	AmountIntRange = "int_range"
	AmountDefault  = "default"
)

// ProfileSpec is the file form of a profile. Numbers are kept as strings so
// malformed values are reported by the loader instead of the decoder.
type ProfileSpec struct {
	Name        string     `mapstructure:"name"`
	Description string     `mapstructure:"description"`
	Rules       []RuleSpec `mapstructure:"rules"`
}

type RuleSpec struct {
	Variant   string            `mapstructure:"variant"`
	Trigger   TriggerSpec       `mapstructure:"trigger"`
	Amount    AmountSpec        `mapstructure:"amount"`
	Overrides map[string]string `mapstructure:"overrides"`
	Choices   *ChoiceSpec       `mapstructure:"choices"`
}

type TriggerSpec struct {
	Kind     string   `mapstructure:"kind"`
	Days     []int    `mapstructure:"days"`
	Weekdays []string `mapstructure:"weekdays"`
	Period   int      `mapstructure:"period"`
	P        string   `mapstructure:"p"`
	Attempts int      `mapstructure:"attempts"`
}

type AmountSpec struct {
	Kind  string `mapstructure:"kind"`
	Value string `mapstructure:"value"`
	Min   string `mapstructure:"min"`
	Max   string `mapstructure:"max"`
}

type ChoiceSpec struct {
	Field  string   `mapstructure:"field"`
	Values []string `mapstructure:"values"`
}

// Compile checks every rule of a ProfileSpec and builds the profile.
func Compile(spec ProfileSpec) (*Profile, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, ErrProfileConfig{Reason: "name is required"}
	}

	profile := &Profile{Name: name, Description: spec.Description}
	for i, rs := range spec.Rules {
		rule, reason := compileRule(rs)
		if reason != "" {
			return nil, ErrProfileConfig{Profile: name, Rule: i + 1, Reason: reason}
		}
		profile.Rules = append(profile.Rules, rule)
	}
	return profile, nil
}

func compileRule(rs RuleSpec) (Rule, string) {
	kind, err := catalog.ParseKind(rs.Variant)
	if err != nil {
		return Rule{}, err.Error()
	}
	tmpl, _ := catalog.Lookup(kind)

	trigger, reason := compileTrigger(rs.Trigger)
	if reason != "" {
		return Rule{}, reason
	}
	amount, reason := compileAmount(rs.Amount, tmpl)
	if reason != "" {
		return Rule{}, reason
	}

	rule := Rule{Kind: kind, Trigger: trigger, Amount: amount}
	for field, value := range rs.Overrides {
		if err := rule.Overrides.Set(field, value); err != nil {
			return Rule{}, err.Error()
		}
	}

	if rs.Choices != nil {
		var check catalog.Overrides
		if err := check.Set(rs.Choices.Field, ""); err != nil {
			return Rule{}, "choices: " + err.Error()
		}
		if len(rs.Choices.Values) == 0 {
			return Rule{}, "choices: values are required"
		}
		rule.Choice = &Choice{
			Field:  rs.Choices.Field,
			Values: append([]string(nil), rs.Choices.Values...),
		}
	}
	return rule, ""
}

func compileTrigger(ts TriggerSpec) (Trigger, string) {
	switch ts.Kind {
	case TriggerDaysOfMonth:
		if len(ts.Days) == 0 {
			return nil, "days_of_month: days are required"
		}
		set := make(daysOfMonth, len(ts.Days))
		for _, d := range ts.Days {
			if d < 1 || d > 31 {
				return nil, fmt.Sprintf("days_of_month: day %d out of range", d)
			}
			set[d] = struct{}{}
		}
		return set, ""

	case TriggerWeekdays:
		if len(ts.Weekdays) == 0 {
			return nil, "weekdays: weekdays are required"
		}
		set := make(weekdays, len(ts.Weekdays))
		for _, name := range ts.Weekdays {
			wd, ok := parseWeekday(name)
			if !ok {
				return nil, fmt.Sprintf("weekdays: unknown weekday %q", name)
			}
			set[wd] = struct{}{}
		}
		return set, ""

	case TriggerEveryNDays:
		if ts.Period < 1 {
			return nil, "every_n_days: period must be at least 1"
		}
		return everyNDays{period: ts.Period}, ""

	case TriggerProbability:
		p, err := strconv.ParseFloat(strings.TrimSpace(ts.P), 64)
		if err != nil || math.IsNaN(p) {
			return nil, fmt.Sprintf("probability: p %q is not a number", ts.P)
		}
		if p < 0 || p > 1 {
			return nil, fmt.Sprintf("probability: p %v outside [0, 1]", p)
		}
		attempts := ts.Attempts
		if attempts == 0 {
			attempts = 1
		}
		if attempts < 0 {
			return nil, "probability: attempts must be positive"
		}
		return probability{p: p, attempts: attempts}, ""

	case "":
		return nil, "trigger kind is required"
	default:
		return nil, fmt.Sprintf("unknown trigger kind %q", ts.Kind)
	}
}

func compileAmount(as AmountSpec, tmpl catalog.Template) (Amount, string) {
	switch as.Kind {
	case AmountFixed:
		v, err := decimal.NewFromString(strings.TrimSpace(as.Value))
		if err != nil {
			return nil, fmt.Sprintf("fixed: value %q is not a number", as.Value)
		}
		return fixedAmount{value: v}, ""

	case AmountUniform:
		lo, errLo := strconv.ParseFloat(strings.TrimSpace(as.Min), 64)
		hi, errHi := strconv.ParseFloat(strings.TrimSpace(as.Max), 64)
		if errLo != nil || errHi != nil || !finite(lo) || !finite(hi) {
			return nil, fmt.Sprintf("uniform: range [%q, %q] is not numeric", as.Min, as.Max)
		}
		if lo > hi {
			return nil, fmt.Sprintf("uniform: min %v greater than max %v", lo, hi)
		}
		if !finite(hi - lo) {
			return nil, fmt.Sprintf("uniform: range [%v, %v] is too wide", lo, hi)
		}
		return uniformAmount{min: lo, max: hi}, ""

	case AmountIntRange:
		lo, errLo := strconv.ParseInt(strings.TrimSpace(as.Min), 10, 64)
		hi, errHi := strconv.ParseInt(strings.TrimSpace(as.Max), 10, 64)
		if errLo != nil || errHi != nil {
			return nil, fmt.Sprintf("int_range: range [%q, %q] is not integer", as.Min, as.Max)
		}
		if lo > hi {
			return nil, fmt.Sprintf("int_range: min %d greater than max %d", lo, hi)
		}
		// Draw picks from hi-lo+1 values, which must fit in an int64
		if (lo < 0 && hi > math.MaxInt64+lo) || hi-lo == math.MaxInt64 {
			return nil, fmt.Sprintf("int_range: range [%d, %d] is too wide", lo, hi)
		}
		return intRangeAmount{min: lo, max: hi}, ""

	case AmountDefault, "":
		if !tmpl.HasDefaultAmount() {
			return nil, "variant has no default amount"
		}
		return defaultAmount{}, ""

	default:
		return nil, fmt.Sprintf("unknown amount kind %q", as.Kind)
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func parseWeekday(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) < 3 {
		return 0, false
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		full := strings.ToLower(wd.String())
		if name == full || name == full[:3] {
			return wd, true
		}
	}
	return 0, false
}
