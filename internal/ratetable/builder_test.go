package ratetable

import (
	"errors"
	"testing"
	"time"

	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func day(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayp(s string) *time.Time {
	t := day(s)
	return &t
}

func pct(code domain.ComponentCode, min string, max *decimal.Decimal, ee, er string, start string, end *time.Time) domain.RateBracket {
	return domain.RateBracket{
		ComponentCode:  code,
		RangeMin:       d(min),
		RangeMax:       max,
		Mode:           domain.PercentageOfBasis,
		EmployeeRate:   d(ee),
		EmployerRate:   d(er),
		EffectiveStart: day(start),
		EffectiveEnd:   end,
	}
}

func prog(code domain.ComponentCode, min string, max *decimal.Decimal, base, rate, start string) domain.RateBracket {
	return domain.RateBracket{
		ComponentCode:  code,
		RangeMin:       d(min),
		RangeMax:       max,
		Mode:           domain.ProgressiveBracket,
		BaseAmount:     d(base),
		ExcessRate:     d(rate),
		EffectiveStart: day(start),
	}
}

func TestBuilder_AddBracket_AssignsDeterministicIDs(t *testing.T) {
	br := pct("PAGIBIG", "0", nil, "0.02", "0.02", "2024-02-01", nil)

	b1 := NewBuilder()
	require.NoError(t, b1.AddBracket(br))
	b2 := NewBuilder()
	require.NoError(t, b2.AddBracket(br))

	t1, err := b1.Build()
	require.NoError(t, err)
	t2, err := b2.Build()
	require.NoError(t, err)

	l1, err := t1.Load("PAGIBIG")
	require.NoError(t, err)
	l2, err := t2.Load("PAGIBIG")
	require.NoError(t, err)

	require.Len(t, l1, 1)
	assert.NotEmpty(t, l1[0].ID)
	assert.Equal(t, l1[0].ID, l2[0].ID)
	assert.Greater(t, t2.Version(), t1.Version())
}

func TestBuilder_AddBracket_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		bracket domain.RateBracket
	}{
		{
			name:    "rate above one",
			bracket: pct("SSS", "0", nil, "1.5", "0.1", "2024-01-01", nil),
		},
		{
			name:    "max below min",
			bracket: pct("SSS", "500", dp("100"), "0.1", "0.1", "2024-01-01", nil),
		},
		{
			name:    "end before start",
			bracket: pct("SSS", "0", nil, "0.1", "0.1", "2024-01-01", dayp("2023-12-31")),
		},
		{
			name:    "missing mode",
			bracket: domain.RateBracket{ComponentCode: "SSS", EffectiveStart: day("2024-01-01")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBuilder().AddBracket(tt.bracket)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidBracket))
			assert.True(t, domain.IsTableError(err))
		})
	}
}

func TestBuilder_AddBracket_Overlap(t *testing.T) {
	tests := []struct {
		name      string
		first     domain.RateBracket
		second    domain.RateBracket
		wantError bool
	}{
		{
			name:      "shared boundary is allowed",
			first:     pct("PH", "0", dp("10000"), "0.02", "0.02", "2024-01-01", nil),
			second:    pct("PH", "10000", nil, "0.025", "0.025", "2024-01-01", nil),
			wantError: false,
		},
		{
			name:      "intersecting ranges in same window",
			first:     pct("PH", "0", dp("10000"), "0.02", "0.02", "2024-01-01", nil),
			second:    pct("PH", "9000", nil, "0.025", "0.025", "2024-01-01", nil),
			wantError: true,
		},
		{
			name:      "same range in disjoint declared windows",
			first:     pct("PH", "0", nil, "0.02", "0.02", "2023-01-01", dayp("2023-12-31")),
			second:    pct("PH", "0", nil, "0.025", "0.025", "2024-01-01", nil),
			wantError: false,
		},
		{
			name:      "open window closed by later generation",
			first:     pct("PH", "0", nil, "0.02", "0.02", "2023-01-01", nil),
			second:    pct("PH", "0", nil, "0.025", "0.025", "2024-01-01", nil),
			wantError: false,
		},
		{
			name:      "declared window runs into later generation",
			first:     pct("PH", "0", nil, "0.02", "0.02", "2023-01-01", dayp("2024-06-30")),
			second:    pct("PH", "0", nil, "0.025", "0.025", "2024-01-01", nil),
			wantError: true,
		},
		{
			name:      "repeated row in same window",
			first:     pct("PH", "0", dp("10000"), "0.02", "0.02", "2024-01-01", nil),
			second:    pct("PH", "0", dp("10000"), "0.02", "0.02", "2024-01-01", nil),
			wantError: true,
		},
		{
			name:      "wider copy from the same floor",
			first:     pct("PH", "0", dp("10000"), "0.02", "0.02", "2024-01-01", nil),
			second:    pct("PH", "0", nil, "0.025", "0.025", "2024-01-01", nil),
			wantError: true,
		},
		{
			name:      "different components never conflict",
			first:     pct("PH", "0", nil, "0.02", "0.02", "2024-01-01", nil),
			second:    pct("SSS", "0", nil, "0.045", "0.095", "2024-01-01", nil),
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			require.NoError(t, b.AddBracket(tt.first))
			err := b.AddBracket(tt.second)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			var overlap *domain.OverlappingBracketRangeError
			require.ErrorAs(t, err, &overlap)
			assert.Equal(t, tt.first.ComponentCode, overlap.ComponentCode)
			assert.True(t, errors.Is(err, domain.ErrOverlappingBracketRange))
		})
	}
}

func TestBuilder_AddBracket_DuplicateID(t *testing.T) {
	b := NewBuilder()
	first := pct("PH", "0", dp("10000"), "0.02", "0.02", "2024-01-01", nil)
	first.ID = "ph-1"
	second := pct("PH", "10000", nil, "0.02", "0.02", "2024-01-01", nil)
	second.ID = "ph-1"

	require.NoError(t, b.AddBracket(first))
	err := b.AddBracket(second)
	assert.ErrorIs(t, err, domain.ErrInvalidBracket)
}

func TestBuilder_AddBracket_CopiesPointers(t *testing.T) {
	max := d("10000")
	br := pct("PH", "0", &max, "0.02", "0.02", "2024-01-01", nil)
	b := NewBuilder()
	require.NoError(t, b.AddBracket(br))
	require.NoError(t, b.AddBracket(pct("PH", "10000", nil, "0.02", "0.02", "2024-01-01", nil)))

	max = d("99999")

	table, err := b.Build()
	require.NoError(t, err)
	brackets, err := table.Load("PH")
	require.NoError(t, err)
	assert.True(t, brackets[0].RangeMax.Equal(d("10000")))
}

func TestBuilder_Build_TopBracket(t *testing.T) {
	tests := []struct {
		name     string
		brackets []domain.RateBracket
		wantErr  bool
	}{
		{
			name: "single open-ended top",
			brackets: []domain.RateBracket{
				pct("PH", "0", dp("10000"), "0.02", "0.02", "2024-01-01", nil),
				pct("PH", "10000", nil, "0.025", "0.025", "2024-01-01", nil),
			},
		},
		{
			name: "no open-ended bracket",
			brackets: []domain.RateBracket{
				pct("PH", "0", dp("10000"), "0.02", "0.02", "2024-01-01", nil),
			},
			wantErr: true,
		},
		{
			name: "older generation missing its top",
			brackets: []domain.RateBracket{
				pct("PH", "0", dp("10000"), "0.02", "0.02", "2023-01-01", dayp("2023-12-31")),
				pct("PH", "0", nil, "0.025", "0.025", "2024-01-01", nil),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			for _, br := range tt.brackets {
				require.NoError(t, b.AddBracket(br))
			}
			_, err := b.Build()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var top *domain.TopBracketError
			require.ErrorAs(t, err, &top)
			assert.Equal(t, "no open-ended top bracket", top.Reason)
			assert.ErrorIs(t, err, domain.ErrOpenEndedTopBracket)
		})
	}
}

func TestBuilder_AddBracket_TwoOpenEndedBracketsOverlap(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddBracket(pct("PH", "0", nil, "0.02", "0.02", "2024-01-01", nil)))
	err := b.AddBracket(pct("PH", "10000", nil, "0.02", "0.02", "2024-01-01", nil))
	assert.ErrorIs(t, err, domain.ErrOverlappingBracketRange)
}

func TestBuilder_Build_Continuity(t *testing.T) {
	t.Run("continuous graduated table", func(t *testing.T) {
		b := NewBuilder()
		for _, br := range []domain.RateBracket{
			prog("BIR", "0", dp("20833"), "0", "0", "2023-01-01"),
			prog("BIR", "20833", dp("33333"), "0", "0.15", "2023-01-01"),
			prog("BIR", "33333", dp("66667"), "1875", "0.20", "2023-01-01"),
			prog("BIR", "66667", dp("166667"), "8541.80", "0.25", "2023-01-01"),
			prog("BIR", "166667", dp("666667"), "33541.80", "0.30", "2023-01-01"),
			prog("BIR", "666667", nil, "183541.80", "0.35", "2023-01-01"),
		} {
			require.NoError(t, b.AddBracket(br))
		}
		_, err := b.Build()
		assert.NoError(t, err)
	})

	t.Run("cent gap is checked at the upper floor", func(t *testing.T) {
		b := NewBuilder()
		require.NoError(t, b.AddBracket(prog("BIR", "0", dp("20833.00"), "0", "0", "2023-01-01")))
		require.NoError(t, b.AddBracket(prog("BIR", "20833.01", nil, "0", "0.15", "2023-01-01")))
		_, err := b.Build()
		assert.NoError(t, err)
	})

	t.Run("jump at boundary", func(t *testing.T) {
		b := NewBuilder()
		require.NoError(t, b.AddBracket(prog("BIR", "0", dp("20833"), "0", "0", "2023-01-01")))
		require.NoError(t, b.AddBracket(prog("BIR", "20833", nil, "500", "0.15", "2023-01-01")))
		_, err := b.Build()
		var disc *domain.DiscontinuityError
		require.ErrorAs(t, err, &disc)
		assert.True(t, disc.Boundary.Equal(d("20833")))
		assert.True(t, disc.LowerAmount.Equal(decimal.Zero))
		assert.True(t, disc.UpperAmount.Equal(d("500")))
		assert.ErrorIs(t, err, domain.ErrDiscontinuousBrackets)
	})

	t.Run("wide gap is not evaluated", func(t *testing.T) {
		b := NewBuilder()
		require.NoError(t, b.AddBracket(prog("BIR", "0", dp("10000"), "0", "0", "2023-01-01")))
		require.NoError(t, b.AddBracket(prog("BIR", "20000", nil, "500", "0.15", "2023-01-01")))
		_, err := b.Build()
		assert.NoError(t, err)
	})
}

func TestBuilder_AddComponent(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddComponent(domain.Component{Code: "SSS"}))
	assert.Error(t, b.AddComponent(domain.Component{Code: "SSS"}))
	assert.Error(t, b.AddComponent(domain.Component{}))
	assert.Error(t, b.AddComponent(domain.Component{Code: "PH", EmployeeCeiling: dp("-1")}))
}

func TestBuilder_Build_DefaultPlaces(t *testing.T) {
	b := NewBuilder()
	b.SetDefaultMinorUnitPlaces(0)
	places := int32(3)
	require.NoError(t, b.AddComponent(domain.Component{Code: "A", MinorUnitPlaces: &places}))
	require.NoError(t, b.AddBracket(pct("A", "0", nil, "0.01", "0.01", "2024-01-01", nil)))
	require.NoError(t, b.AddBracket(pct("B", "0", nil, "0.01", "0.01", "2024-01-01", nil)))

	table, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, int32(3), table.Component("A").Places())
	assert.Equal(t, int32(0), table.Component("B").Places())
	assert.False(t, table.Component("B").Optional)
}

func TestBuilder_Currency(t *testing.T) {
	b := NewBuilder()
	b.SetCurrency("PHP")
	require.NoError(t, b.AddBracket(pct("PH", "0", nil, "0.02", "0.02", "2024-01-01", nil)))

	table, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "PHP", table.Currency())
	assert.False(t, table.LoadedAt().IsZero())

	empty, err := NewBuilder().Build()
	require.NoError(t, err)
	assert.Empty(t, empty.Currency())
}
