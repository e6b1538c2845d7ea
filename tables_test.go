package qoa

import (
	"math"
	"testing"
)

func TestQuantTab(t *testing.T) {
	golden := []struct {
		residual int32
		want     int32
	}{
		{residual: -8, want: 7},
		{residual: -1, want: 1},
		{residual: 0, want: 0},
		{residual: 1, want: 0},
		{residual: 8, want: 6},
	}
	for _, g := range golden {
		got := quantTab[g.residual+8]
		if got != g.want {
			t.Errorf("quantized index mismatch for residual %d; expected %d, got %d", g.residual, g.want, got)
		}
	}
}

// The scalefactors are round(pow(s+1, 2.75)).
func TestScalefactorTab(t *testing.T) {
	for s, got := range scalefactorTab {
		want := int32(math.Round(math.Pow(float64(s+1), 2.75)))
		if got != want {
			t.Errorf("scalefactor mismatch at index %d; expected %d, got %d", s, want, got)
		}
	}
}

// The reciprocals are ((1<<16) + scalefactor - 1) / scalefactor.
func TestReciprocalTab(t *testing.T) {
	for s, got := range reciprocalTab {
		want := ((1 << 16) + scalefactorTab[s] - 1) / scalefactorTab[s]
		if got != want {
			t.Errorf("reciprocal mismatch at index %d; expected %d, got %d", s, want, got)
		}
	}
}

// The dequantized residuals are round(scalefactor * dqt[q]), with the
// smallest entries mapped to 3/4 instead of 1.
func TestDequantTab(t *testing.T) {
	dqt := [8]float64{0.75, -0.75, 2.5, -2.5, 4.5, -4.5, 7, -7}
	for s := range dequantTab {
		for q := range dequantTab[s] {
			want := int32(math.Round(float64(scalefactorTab[s]) * dqt[q]))
			got := dequantTab[s][q]
			if got != want {
				t.Errorf("dequantized residual mismatch at scalefactor %d, index %d; expected %d, got %d", s, q, want, got)
			}
		}
	}
}
