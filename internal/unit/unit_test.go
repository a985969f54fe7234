package unit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewSpecsNormalizesFactors(t *testing.T) {
	cases := []struct {
		name        string
		perCase     *int
		perSet      *int
		wantPerCase int
		wantPerSet  int
	}{
		{name: "both set", perCase: intPtr(4), perSet: intPtr(10), wantPerCase: 4, wantPerSet: 10},
		{name: "missing", perCase: nil, perSet: nil, wantPerCase: 1, wantPerSet: 1},
		{name: "zero", perCase: intPtr(0), perSet: intPtr(6), wantPerCase: 1, wantPerSet: 6},
		{name: "negative", perCase: intPtr(3), perSet: intPtr(-2), wantPerCase: 3, wantPerSet: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSpecs(tc.perCase, tc.perSet)
			assert.Equal(t, tc.wantPerCase, s.BoxesPerCase())
			assert.Equal(t, tc.wantPerSet, s.BoxesPerSet())
		})
	}

	var zero Specs
	assert.Equal(t, 1, zero.BoxesPerCase())
	assert.Equal(t, 5.0, ToBoxes(5, Case, zero))
}

func TestToBoxes(t *testing.T) {
	s := Of(4, 10)
	assert.Equal(t, 80.0, ToBoxes(2, Case, s))
	assert.Equal(t, 30.0, ToBoxes(3, CaseBox, s))
	assert.Equal(t, 7.0, ToBoxes(7, Box, s))
	assert.Equal(t, 40, ToBoxesInt(1, Case, s))
}

func TestFromBoxesIsInverse(t *testing.T) {
	specs := []Specs{Of(4, 10), Of(1, 1), Of(6, 12), NewSpecs(nil, intPtr(8))}
	units := []Unit{Case, CaseBox, Box}
	quantities := []float64{0, 1, 2.5, 17, 123}

	for _, s := range specs {
		for _, u := range units {
			for _, q := range quantities {
				assert.InDelta(t, q, FromBoxes(ToBoxes(q, u, s), u, s), 1e-9, "unit=%s q=%v", u, q)
			}
		}
	}
}

func TestBreakdownRecomposes(t *testing.T) {
	specs := []Specs{Of(4, 10), Of(3, 5), Of(1, 1), Of(12, 1)}
	for _, s := range specs {
		for boxes := 0; boxes <= 200; boxes++ {
			b := BreakdownOf(boxes, s)
			recomposed := b.Cases*s.BoxesPerCase()*s.BoxesPerSet() + b.CaseBoxes*s.BoxesPerSet() + b.Boxes
			require.Equal(t, boxes, recomposed)
			require.GreaterOrEqual(t, b.CaseBoxes, 0)
			require.Less(t, b.CaseBoxes, s.BoxesPerCase())
			require.GreaterOrEqual(t, b.Boxes, 0)
			require.Less(t, b.Boxes, s.BoxesPerSet())
		}
	}
}

func TestFormat(t *testing.T) {
	s := Of(4, 10)
	cases := []struct {
		boxes int
		want  string
	}{
		{boxes: 45, want: "1箱 5盒"},
		{boxes: 0, want: "0盒"},
		{boxes: 40, want: "1箱"},
		{boxes: 10, want: "1端盒"},
		{boxes: 97, want: "2箱 1端盒 7盒"},
		{boxes: 3, want: "3盒"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Format(tc.boxes, s), "boxes=%d", tc.boxes)
	}

	assert.Equal(t, BreakdownOf(45, s), Breakdown{Cases: 1, CaseBoxes: 0, Boxes: 5})
}

func TestFormatWithoutSpecsCountsCases(t *testing.T) {
	s := NewSpecs(nil, nil)
	assert.Equal(t, "5箱", Format(5, s))
}

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit(" CaseBox ")
	require.NoError(t, err)
	assert.Equal(t, CaseBox, u)

	u, err = ParseUnit("")
	require.NoError(t, err)
	assert.Equal(t, Box, u)

	_, err = ParseUnit("pallet")
	assert.ErrorIs(t, err, ErrInvalidUnit)

	assert.Equal(t, "端盒", CaseBox.DisplayName())
	assert.False(t, Unit("pallet").IsValid())
}

func TestConvertUnitCost(t *testing.T) {
	s := Of(4, 10)
	got := ConvertUnitCost(decimal.NewFromInt(3), Box, Case, s)
	assert.True(t, got.Equal(decimal.RequireFromString("0.075")), got.String())

	got = ConvertUnitCost(decimal.NewFromInt(2), CaseBox, Box, s)
	assert.True(t, got.Equal(decimal.NewFromInt(20)), got.String())

	perBox := PerBoxCost(decimal.NewFromInt(400), Case, s)
	assert.True(t, perBox.Equal(decimal.NewFromInt(10)), perBox.String())
}
