package generator

import (
	"math/rand"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/ledger-synth/internal/catalog"
)

// Trigger decides how many times a rule fires on a given day.
type Trigger interface {
	Fires(day civil.Date, rng *rand.Rand) int
}

// Amount draws the nominal amount of one firing. A nil result selects the
// variant's default amount.
type Amount interface {
	Draw(rng *rand.Rand) any
}

type daysOfMonth map[int]struct{}

func (t daysOfMonth) Fires(day civil.Date, _ *rand.Rand) int {
	if _, ok := t[day.Day]; ok {
		return 1
	}
	return 0
}

type weekdays map[time.Weekday]struct{}

func (t weekdays) Fires(day civil.Date, _ *rand.Rand) int {
	if _, ok := t[day.In(time.UTC).Weekday()]; ok {
		return 1
	}
	return 0
}

// everyNDays fires when the day of month is a multiple of period.
type everyNDays struct {
	period int
}

func (t everyNDays) Fires(day civil.Date, _ *rand.Rand) int {
	if day.Day%t.period == 0 {
		return 1
	}
	return 0
}

// probability samples the trigger independently per attempt.
type probability struct {
	p        float64
	attempts int
}

func (t probability) Fires(_ civil.Date, rng *rand.Rand) int {
	n := 0
	for i := 0; i < t.attempts; i++ {
		if rng.Float64() < t.p {
			n++
		}
	}
	return n
}

type fixedAmount struct {
	value decimal.Decimal
}

func (a fixedAmount) Draw(_ *rand.Rand) any {
	return a.value
}

// uniformAmount is continuous on [min, max).
type uniformAmount struct {
	min, max float64
}

func (a uniformAmount) Draw(rng *rand.Rand) any {
	return decimal.NewFromFloat(a.min + rng.Float64()*(a.max-a.min))
}

// intRangeAmount is a whole number on [min, max].
type intRangeAmount struct {
	min, max int64
}

func (a intRangeAmount) Draw(rng *rand.Rand) any {
	return decimal.NewFromInt(a.min + rng.Int63n(a.max-a.min+1))
}

type defaultAmount struct{}

func (defaultAmount) Draw(_ *rand.Rand) any {
	return nil
}

// Choice sets one override field to a value picked uniformly per firing.
type Choice struct {
	Field  string
	Values []string
}

// Rule is one compiled line of a profile.
type Rule struct {
	Kind      catalog.Kind
	Trigger   Trigger
	Amount    Amount
	Overrides catalog.Overrides
	Choice    *Choice
}

func (r Rule) params(rng *rand.Rand) (catalog.Overrides, any) {
	overrides := r.Overrides
	if r.Choice != nil {
		// field was checked at load
		_ = overrides.Set(r.Choice.Field, r.Choice.Values[rng.Intn(len(r.Choice.Values))])
	}
	return overrides, r.Amount.Draw(rng)
}

// Profile is a named, ordered rule set.
type Profile struct {
	Name        string
	Description string
	Rules       []Rule
}
