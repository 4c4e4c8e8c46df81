package viz

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/guptarohit/asciigraph"

	"github.com/huckl3b3rry87/ctrlab/internal/analysis"
	"github.com/huckl3b3rry87/ctrlab/internal/control"
)

// Series plots one trace with a caption.
func Series(values []float64, caption string, width, height int) string {
	if len(values) < 2 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(caption))
}

// StepPlot plots a step response and summarizes it underneath.
func StepPlot(times, y []float64, width, height int) string {
	if len(y) < 2 {
		return ""
	}
	info := analysis.AnalyzeStep(times, y)
	chart := asciigraph.Plot(y,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption("step response"))
	summary := fmt.Sprintf(
		"rise %.3fs  settle %.3fs  overshoot %.1f%%  final %.3f",
		info.RiseTime, info.SettlingTime, info.Overshoot, info.FinalValue)
	return chart + "\n" + summary
}

// ComparePlot overlays the measured output with a model's simulated one.
func ComparePlot(measured, simulated []float64, caption string, width, height int) string {
	if len(measured) < 2 || len(simulated) != len(measured) {
		return ""
	}
	return asciigraph.PlotMany([][]float64{measured, simulated},
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.SeriesColors(asciigraph.Default, asciigraph.Red),
		asciigraph.Caption(caption))
}

// BodeMagnitude plots gain in dB over the given frequency points.
func BodeMagnitude(resp []analysis.FreqPoint, width, height int) string {
	if len(resp) < 2 {
		return ""
	}
	mags := make([]float64, len(resp))
	for i, pt := range resp {
		mags[i] = pt.MagDB
	}
	caption := fmt.Sprintf("|G| dB, %.2g to %.2g rad/s",
		resp[0].Omega, resp[len(resp)-1].Omega)
	return asciigraph.Plot(mags,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(caption))
}

// LocusPlot draws root-locus branches on the complex plane with the
// imaginary axis marked. Each gain's poles become one dot, so branches
// appear as dotted curves sweeping with gain.
func LocusPlot(locus []control.LocusPoint, width, height int) string {
	if len(locus) == 0 {
		return ""
	}
	maxRe, maxIm := 1e-9, 1e-9
	for _, pt := range locus {
		for _, p := range pt.Poles {
			if a := math.Abs(real(p)); a > maxRe {
				maxRe = a
			}
			if a := math.Abs(imag(p)); a > maxIm {
				maxIm = a
			}
		}
	}

	c := NewCanvas(width, height)
	cw, ch := width*2, height*4
	toScreen := func(p complex128) (int, int) {
		x := int((real(p)/maxRe + 1) / 2 * float64(cw-1))
		y := int((1 - imag(p)/maxIm) / 2 * float64(ch-1))
		return x, y
	}

	// Axes cross at the origin of the s-plane.
	ox, oy := toScreen(0)
	c.DrawLine(ox, 0, ox, ch-1)
	c.DrawLine(0, oy, cw-1, oy)

	for i, pt := range locus {
		for _, p := range pt.Poles {
			x, y := toScreen(p)
			if i == 0 {
				c.Mark(x, y)
			} else {
				c.Set(x, y)
			}
		}
	}

	scale := fmt.Sprintf("re [%.2g, %.2g]  im [%.2g, %.2g]  gain %.3g to %.3g",
		-maxRe, maxRe, -maxIm, maxIm, locus[0].Gain, locus[len(locus)-1].Gain)
	return c.String() + scale
}

// PolePlot draws one pole set on the complex plane.
func PolePlot(poles []complex128, width, height int) string {
	if len(poles) == 0 {
		return ""
	}
	pts := []control.LocusPoint{{Gain: 0, Poles: poles}}
	out := LocusPlot(pts, width, height)
	for _, p := range poles {
		out += fmt.Sprintf("\n  pole %7.3f %+7.3fi  |p|=%.3f", real(p), imag(p), cmplx.Abs(p))
	}
	return out
}
