package generator

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledger-synth/internal/catalog"
)

func TestLoadBuiltin(t *testing.T) {
	reg, err := LoadBuiltin()

	require.NoError(t, err)
	assert.Equal(t, []string{"foodie", "frugal", "high-payment", "poor-spending", "regular", "student", "tech-savvy"}, reg.Names())

	regular, err := reg.Get("regular")
	require.NoError(t, err)
	require.Len(t, regular.Rules, 9)
	assert.Equal(t, catalog.KindRent, regular.Rules[0].Kind)
	assert.Equal(t, catalog.KindAmazon, regular.Rules[8].Kind)
	require.NotNil(t, regular.Rules[7].Choice)
	assert.Equal(t, []string{"Ride", "Food"}, regular.Rules[7].Choice.Values)

	coffee := regular.Rules[5]
	assert.Equal(t, probability{p: 0.7, attempts: 1}, coffee.Trigger)
	assert.Equal(t, uniformAmount{min: 5.75, max: 7.75}, coffee.Amount)

	_, err = reg.Get("millionaire")
	assert.ErrorIs(t, err, ErrUnknownProfile{Name: "millionaire"})
}

func TestCompile_Errors(t *testing.T) {
	valid := func() RuleSpec {
		return RuleSpec{
			Variant: "groceries",
			Trigger: TriggerSpec{Kind: TriggerEveryNDays, Period: 7},
			Amount:  AmountSpec{Kind: AmountIntRange, Min: "50", Max: "150"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*RuleSpec)
	}{
		{name: "unknown variant", mutate: func(r *RuleSpec) { r.Variant = "casino" }},
		{name: "non numeric range", mutate: func(r *RuleSpec) { r.Amount.Min = "fifty" }},
		{name: "inverted range", mutate: func(r *RuleSpec) { r.Amount.Min = "200" }},
		{name: "fractional int range", mutate: func(r *RuleSpec) { r.Amount.Max = "150.5" }},
		{name: "non numeric uniform", mutate: func(r *RuleSpec) { r.Amount = AmountSpec{Kind: AmountUniform, Min: "1", Max: "x"} }},
		{name: "non numeric fixed", mutate: func(r *RuleSpec) { r.Amount = AmountSpec{Kind: AmountFixed, Value: "lots"} }},
		{name: "default without default", mutate: func(r *RuleSpec) { r.Amount = AmountSpec{Kind: AmountDefault} }},
		{name: "unknown amount kind", mutate: func(r *RuleSpec) { r.Amount.Kind = "gaussian" }},
		{name: "unknown trigger kind", mutate: func(r *RuleSpec) { r.Trigger.Kind = "lunar" }},
		{name: "missing trigger kind", mutate: func(r *RuleSpec) { r.Trigger = TriggerSpec{} }},
		{name: "zero period", mutate: func(r *RuleSpec) { r.Trigger.Period = 0 }},
		{name: "empty days", mutate: func(r *RuleSpec) { r.Trigger = TriggerSpec{Kind: TriggerDaysOfMonth} }},
		{name: "day out of range", mutate: func(r *RuleSpec) { r.Trigger = TriggerSpec{Kind: TriggerDaysOfMonth, Days: []int{32}} }},
		{name: "unknown weekday", mutate: func(r *RuleSpec) { r.Trigger = TriggerSpec{Kind: TriggerWeekdays, Weekdays: []string{"funday"}} }},
		{name: "probability above one", mutate: func(r *RuleSpec) { r.Trigger = TriggerSpec{Kind: TriggerProbability, P: "1.5"} }},
		{name: "probability not numeric", mutate: func(r *RuleSpec) { r.Trigger = TriggerSpec{Kind: TriggerProbability, P: "often"} }},
		{name: "probability NaN", mutate: func(r *RuleSpec) { r.Trigger = TriggerSpec{Kind: TriggerProbability, P: "NaN"} }},
		{name: "uniform NaN min", mutate: func(r *RuleSpec) { r.Amount = AmountSpec{Kind: AmountUniform, Min: "NaN", Max: "5"} }},
		{name: "uniform infinite max", mutate: func(r *RuleSpec) { r.Amount = AmountSpec{Kind: AmountUniform, Min: "1", Max: "Inf"} }},
		{name: "uniform infinite min", mutate: func(r *RuleSpec) { r.Amount = AmountSpec{Kind: AmountUniform, Min: "-Inf", Max: "5"} }},
		{name: "uniform span overflows", mutate: func(r *RuleSpec) { r.Amount = AmountSpec{Kind: AmountUniform, Min: "-1e308", Max: "1e308"} }},
		{name: "int range span overflows", mutate: func(r *RuleSpec) {
			r.Amount = AmountSpec{Kind: AmountIntRange, Min: "-9000000000000000000", Max: "9000000000000000000"}
		}},
		{name: "int range count overflows", mutate: func(r *RuleSpec) {
			r.Amount = AmountSpec{Kind: AmountIntRange, Min: "0", Max: "9223372036854775807"}
		}},
		{name: "unknown override", mutate: func(r *RuleSpec) { r.Overrides = map[string]string{"colour": "red"} }},
		{name: "choices without values", mutate: func(r *RuleSpec) { r.Choices = &ChoiceSpec{Field: "merchant"} }},
		{name: "choices unknown field", mutate: func(r *RuleSpec) { r.Choices = &ChoiceSpec{Field: "colour", Values: []string{"red"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, second := valid(), valid()
			tt.mutate(&second)

			_, err := Compile(ProfileSpec{Name: "broken", Rules: []RuleSpec{first, second}})

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrProfileConfig{Profile: "broken"})
			var cfgErr ErrProfileConfig
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, 2, cfgErr.Rule)
		})
	}
}

func TestNewRegistry_DuplicateAndUnnamed(t *testing.T) {
	spec := ProfileSpec{Name: "dup"}
	_, err := NewRegistry(spec, spec)
	assert.ErrorIs(t, err, ErrProfileConfig{Profile: "dup"})

	_, err = NewRegistry(ProfileSpec{})
	assert.ErrorIs(t, err, ErrProfileConfig{})
}

func TestLoad_CustomFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	content := `
profiles:
  - name: regular
    description: overridden
    rules:
      - variant: coffee
        trigger: {kind: weekdays, weekdays: [Mon, friday]}
        amount: {kind: default}
  - name: night-owl
    rules:
      - variant: uber
        trigger: {kind: probability, p: 1, attempts: 3}
        amount: {kind: uniform, min: 20, max: 20}
        overrides: {service: Ride}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	reg, err := Load(path)

	require.NoError(t, err)
	assert.Contains(t, reg.Names(), "night-owl")
	assert.Len(t, reg.Names(), 8)

	regular, err := reg.Get("regular")
	require.NoError(t, err)
	assert.Equal(t, "overridden", regular.Description)
	require.Len(t, regular.Rules, 1)
	monday := date(2025, time.January, 6)
	assert.Equal(t, 1, regular.Rules[0].Trigger.Fires(monday, nil))
	assert.Equal(t, 0, regular.Rules[0].Trigger.Fires(monday.AddDays(1), nil))

	owl, err := reg.Get("night-owl")
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))
	assert.Equal(t, 3, owl.Rules[0].Trigger.Fires(monday, rng))
	overrides, amount := owl.Rules[0].params(rng)
	assert.Equal(t, "Ride", overrides.Service)
	assert.True(t, decimal.NewFromInt(20).Equal(amount.(decimal.Decimal)))
}

func TestLoad_MalformedFileFailsBeforeGeneration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	content := `
profiles:
  - name: bad
    rules:
      - variant: rent
        trigger: {kind: days_of_month, days: [1]}
        amount: {kind: int_range, min: abc, max: 300}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := Load(path)

	assert.ErrorIs(t, err, ErrProfileConfig{Profile: "bad"})

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_UndecodableFieldsAreProfileConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		trigger string
	}{
		{name: "non integer day", trigger: "{kind: days_of_month, days: [first]}"},
		{name: "non integer period", trigger: "{kind: every_n_days, period: weekly}"},
		{name: "non integer attempts", trigger: "{kind: probability, p: 0.5, attempts: many}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "profiles.yaml")
			content := `
profiles:
  - name: typo
    rules:
      - variant: coffee
        trigger: ` + tt.trigger + `
        amount: {kind: default}
`
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			_, err := Load(path)

			require.ErrorIs(t, err, ErrProfileConfig{})
			assert.Contains(t, err.Error(), "failed to decode")
		})
	}
}

func TestAmounts_StayInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	ints := intRangeAmount{min: 10, max: 12}
	uniform := uniformAmount{min: 5.75, max: 7.75}
	seen := map[int64]bool{}

	for i := 0; i < 500; i++ {
		v := ints.Draw(rng).(decimal.Decimal).IntPart()
		assert.GreaterOrEqual(t, v, int64(10))
		assert.LessOrEqual(t, v, int64(12))
		seen[v] = true

		u := uniform.Draw(rng).(decimal.Decimal).InexactFloat64()
		assert.GreaterOrEqual(t, u, 5.75)
		assert.Less(t, u, 7.75)
	}
	assert.Len(t, seen, 3)
	assert.Nil(t, defaultAmount{}.Draw(rng))
}

func TestAmounts_WidestAcceptedRangesDraw(t *testing.T) {
	profile, err := Compile(ProfileSpec{
		Name: "extremes",
		Rules: []RuleSpec{
			{
				Variant: "freelance",
				Trigger: TriggerSpec{Kind: TriggerEveryNDays, Period: 1},
				Amount:  AmountSpec{Kind: AmountIntRange, Min: "1", Max: "9223372036854775807"},
			},
			{
				Variant: "coffee",
				Trigger: TriggerSpec{Kind: TriggerEveryNDays, Period: 1},
				Amount:  AmountSpec{Kind: AmountUniform, Min: "-1e307", Max: "1e307"},
			},
		},
	})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 100; i++ {
		for _, rule := range profile.Rules {
			assert.NotPanics(t, func() { rule.params(rng) })
		}
	}
}
