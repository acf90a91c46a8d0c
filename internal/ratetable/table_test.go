package ratetable

import (
	"testing"
	"time"

	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func philHealthTable(t *testing.T) *Table {
	t.Helper()
	b := NewBuilder()
	require.NoError(t, b.AddComponent(domain.Component{Code: "PHILHEALTH", Name: "PhilHealth", Kind: domain.KindHealthInsurance}))
	for _, br := range []domain.RateBracket{
		pct("PHILHEALTH", "0", dp("10000"), "0.02", "0.02", "2023-01-01", nil),
		pct("PHILHEALTH", "10000", nil, "0.02", "0.02", "2023-01-01", nil),
		pct("PHILHEALTH", "0", dp("10000"), "0.025", "0.025", "2024-01-01", nil),
		pct("PHILHEALTH", "10000", nil, "0.025", "0.025", "2024-01-01", nil),
	} {
		require.NoError(t, b.AddBracket(br))
	}
	table, err := b.Build()
	require.NoError(t, err)
	return table
}

func TestTable_Effective(t *testing.T) {
	table := philHealthTable(t)

	tests := []struct {
		name     string
		asOf     string
		wantLen  int
		wantRate string
	}{
		{name: "before any generation", asOf: "2022-12-31", wantLen: 0},
		{name: "first day of first generation", asOf: "2023-01-01", wantLen: 2, wantRate: "0.02"},
		{name: "last day before supersession", asOf: "2023-12-31", wantLen: 2, wantRate: "0.02"},
		{name: "first day of new generation", asOf: "2024-01-01", wantLen: 2, wantRate: "0.025"},
		{name: "far future", asOf: "2030-06-15", wantLen: 2, wantRate: "0.025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brackets, err := table.Effective("PHILHEALTH", day(tt.asOf))
			require.NoError(t, err)
			require.Len(t, brackets, tt.wantLen)
			if tt.wantLen == 0 {
				return
			}
			assert.True(t, brackets[0].RangeMin.LessThan(brackets[1].RangeMin))
			assert.True(t, brackets[0].EmployeeRate.Equal(d(tt.wantRate)))
		})
	}
}

func TestTable_Effective_UnknownComponent(t *testing.T) {
	table := philHealthTable(t)
	_, err := table.Effective("NOPE", day("2024-01-01"))
	var nc *domain.ComponentNotConfiguredError
	require.ErrorAs(t, err, &nc)
	assert.Equal(t, domain.ComponentCode("NOPE"), nc.ComponentCode)
	assert.True(t, domain.IsNotFound(err))
}

func TestTable_LoadAndGenerations(t *testing.T) {
	table := philHealthTable(t)

	brackets, err := table.Load("PHILHEALTH")
	require.NoError(t, err)
	require.Len(t, brackets, 4)
	assert.Equal(t, day("2023-01-01"), brackets[0].EffectiveStart)
	assert.Equal(t, day("2024-01-01"), brackets[3].EffectiveStart)

	gens := table.Generations("PHILHEALTH")
	assert.Equal(t, []time.Time{day("2023-01-01"), day("2024-01-01")}, gens)

	until, ok := table.InForceUntil("PHILHEALTH", brackets[0].ID)
	require.True(t, ok)
	require.NotNil(t, until)
	assert.Equal(t, day("2023-12-31"), *until)

	until, ok = table.InForceUntil("PHILHEALTH", brackets[3].ID)
	require.True(t, ok)
	assert.Nil(t, until)

	// The stored bracket keeps its declared open window.
	assert.Nil(t, brackets[0].EffectiveEnd)
	assert.Equal(t, 4, table.BracketCount())
	assert.Equal(t, []domain.ComponentCode{"PHILHEALTH"}, table.ComponentCodes())
}

func TestTable_Component_Defaults(t *testing.T) {
	table := philHealthTable(t)

	ph := table.Component("PHILHEALTH")
	assert.Equal(t, "PhilHealth", ph.Name)
	assert.Equal(t, domain.KindHealthInsurance, ph.Kind)
	assert.Equal(t, int32(2), ph.Places())

	unknown := table.Component("OTHER")
	assert.False(t, unknown.Optional)
	assert.Equal(t, domain.KindOther, unknown.Kind)
}

func TestTable_LaterGenerationDoesNotChangeEarlierDates(t *testing.T) {
	before := NewBuilder()
	require.NoError(t, before.AddBracket(pct("PAGIBIG", "0", nil, "0.02", "0.02", "2023-01-01", nil)))
	t1, err := before.Build()
	require.NoError(t, err)

	after := NewBuilder()
	require.NoError(t, after.AddBracket(pct("PAGIBIG", "0", nil, "0.02", "0.02", "2023-01-01", nil)))
	require.NoError(t, after.AddBracket(pct("PAGIBIG", "0", nil, "0.03", "0.03", "2025-01-01", nil)))
	t2, err := after.Build()
	require.NoError(t, err)

	for _, asOf := range []string{"2023-01-01", "2024-06-30", "2024-12-31"} {
		b1, err := t1.Effective("PAGIBIG", day(asOf))
		require.NoError(t, err)
		b2, err := t2.Effective("PAGIBIG", day(asOf))
		require.NoError(t, err)
		assert.Equal(t, b1, b2, asOf)
	}
}
