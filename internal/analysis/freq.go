package analysis

import (
	"math"
	"math/cmplx"

	"github.com/huckl3b3rry87/ctrlab/internal/lti"
)

// FreqPoint is one sample of the frequency response.
type FreqPoint struct {
	Omega    float64 // rad/s
	MagDB    float64
	PhaseDeg float64
}

// FrequencyResponse evaluates G(jw) over a logarithmic frequency grid.
func FrequencyResponse(g *lti.TransferFunction, wMin, wMax float64, n int) []FreqPoint {
	if n < 2 || wMin <= 0 || wMax <= wMin {
		return nil
	}
	out := make([]FreqPoint, n)
	ratio := math.Pow(wMax/wMin, 1/float64(n-1))
	w := wMin
	for i := range out {
		h := g.Eval(complex(0, w))
		out[i] = FreqPoint{
			Omega:    w,
			MagDB:    20 * math.Log10(cmplx.Abs(h)),
			PhaseDeg: cmplx.Phase(h) * 180 / math.Pi,
		}
		w *= ratio
	}
	return out
}

// Bandwidth returns the -3 dB frequency relative to the DC magnitude, or 0
// if the response never drops below it on the grid.
func Bandwidth(g *lti.TransferFunction, wMin, wMax float64, n int) float64 {
	resp := FrequencyResponse(g, wMin, wMax, n)
	if len(resp) == 0 {
		return 0
	}
	ref := 20*math.Log10(math.Abs(g.DCGain())) - 3
	for _, pt := range resp {
		if pt.MagDB <= ref {
			return pt.Omega
		}
	}
	return 0
}
