package control

import (
	"fmt"
	"math"

	"github.com/huckl3b3rry87/ctrlab/internal/lti"
)

// LocusPoint is one gain sample of the root locus.
type LocusPoint struct {
	Gain  float64
	Poles []complex128
}

// RootLocus sweeps the loop gain and returns the closed-loop pole
// trajectories of the unity negative feedback loop around k*G.
func RootLocus(g *lti.TransferFunction, gains []float64) ([]LocusPoint, error) {
	if len(gains) == 0 {
		return nil, fmt.Errorf("control: root locus needs at least one gain")
	}
	points := make([]LocusPoint, 0, len(gains))
	for _, k := range gains {
		cl, err := g.Feedback(k)
		if err != nil {
			return nil, fmt.Errorf("control: closing loop at k=%g: %w", k, err)
		}
		poles, err := cl.Poles()
		if err != nil {
			return nil, err
		}
		points = append(points, LocusPoint{Gain: k, Poles: poles})
	}
	return points, nil
}

// LogGains produces a logarithmically spaced gain sweep.
func LogGains(min, max float64, n int) []float64 {
	if n < 2 || min <= 0 || max <= min {
		return []float64{min}
	}
	out := make([]float64, n)
	ratio := math.Pow(max/min, 1/float64(n-1))
	g := min
	for i := range out {
		out[i] = g
		g *= ratio
	}
	return out
}

// GainForDamping walks the locus and returns the gain whose dominant pole
// pair is closest to the requested damping ratio.
func GainForDamping(g *lti.TransferFunction, gains []float64, zeta float64) (float64, error) {
	if zeta <= 0 || zeta > 1 {
		return 0, fmt.Errorf("control: damping ratio must be in (0, 1], got %g", zeta)
	}
	locus, err := RootLocus(g, gains)
	if err != nil {
		return 0, err
	}

	best := math.Inf(1)
	bestGain := gains[0]
	for _, pt := range locus {
		z, _ := DominantPoles(pt.Poles)
		if d := math.Abs(z - zeta); d < best {
			best = d
			bestGain = pt.Gain
		}
	}
	return bestGain, nil
}
