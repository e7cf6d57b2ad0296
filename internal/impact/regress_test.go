package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinearFit(t *testing.T) {
	tests := []struct {
		name          string
		xs, ys        []float64
		wantSlope     float64
		wantIntercept float64
	}{
		{
			name:          "perfect positive slope",
			xs:            []float64{0, 1, 2, 3},
			ys:            []float64{1, 3, 5, 7},
			wantSlope:     2,
			wantIntercept: 1,
		},
		{
			name:          "perfect negative slope",
			xs:            []float64{-3, -2, -1},
			ys:            []float64{9, 6, 3},
			wantSlope:     -3,
			wantIntercept: 0,
		},
		{
			name:          "flat line",
			xs:            []float64{1, 2, 3},
			ys:            []float64{4, 4, 4},
			wantSlope:     0,
			wantIntercept: 4,
		},
		{
			name:          "noisy data regresses to mean trend",
			xs:            []float64{0, 1, 2, 3},
			ys:            []float64{0, 2, 1, 3},
			wantSlope:     0.8,
			wantIntercept: 0.3,
		},
		{
			name:          "no x variation degenerates to mean",
			xs:            []float64{2, 2, 2},
			ys:            []float64{1, 2, 3},
			wantSlope:     0,
			wantIntercept: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slope, intercept := linearFit(tt.xs, tt.ys)
			assert.InDelta(t, tt.wantSlope, slope, 1e-9)
			assert.InDelta(t, tt.wantIntercept, intercept, 1e-9)
		})
	}
}

func TestIntegrateLine(t *testing.T) {
	// ∫ (2x + 1) dx over [0, 2] = 4 + 2 = 6
	assert.InDelta(t, 6.0, integrateLine(2, 1, 0, 2), 1e-9)

	// Constant line.
	assert.InDelta(t, 15.0, integrateLine(0, 5, 1, 4), 1e-9)

	// Negative area is allowed for the unclamped line.
	assert.InDelta(t, -6.0, integrateLine(-2, -1, 0, 2), 1e-9)
}

func TestIntegrateClampedLine(t *testing.T) {
	tests := []struct {
		name             string
		slope, intercept float64
		lo, hi           float64
		want             float64
	}{
		{
			name: "entirely positive",
			slope: 1, intercept: 10, lo: 1, hi: 3,
			want: 24, // ∫(x+10) over [1,3] = 4 + 20
		},
		{
			name: "entirely negative clamps to zero",
			slope: 1, intercept: -10, lo: 1, hi: 3,
			want: 0,
		},
		{
			name: "rising line crosses zero inside span",
			slope: 1, intercept: -2, lo: 0, hi: 4,
			// Zero crossing at x=2; ∫(x-2) over [2,4] = 2.
			want: 2,
		},
		{
			name: "falling line crosses zero inside span",
			slope: -1, intercept: 2, lo: 0, hi: 4,
			// Positive on [0,2]; ∫(2-x) over [0,2] = 2.
			want: 2,
		},
		{
			name: "flat positive",
			slope: 0, intercept: 3, lo: 1, hi: 3,
			want: 6,
		},
		{
			name: "flat zero",
			slope: 0, intercept: 0, lo: 1, hi: 3,
			want: 0,
		},
		{
			name: "flat negative",
			slope: 0, intercept: -3, lo: 1, hi: 3,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := integrateClampedLine(tt.slope, tt.intercept, tt.lo, tt.hi)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
