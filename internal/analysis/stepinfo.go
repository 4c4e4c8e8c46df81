package analysis

import "math"

// StepInfo summarizes a step response.
type StepInfo struct {
	RiseTime     float64 // 10% -> 90% of final value
	SettlingTime float64 // last exit from the 2% band
	Overshoot    float64 // percent above final value
	PeakTime     float64
	FinalValue   float64
}

// AnalyzeStep computes step-response characteristics from sampled output.
// The final value is taken as the mean of the last 5% of samples.
func AnalyzeStep(times, y []float64) StepInfo {
	n := len(y)
	if n < 3 || len(times) != n {
		return StepInfo{}
	}

	tail := n / 20
	if tail < 1 {
		tail = 1
	}
	final := 0.0
	for _, v := range y[n-tail:] {
		final += v
	}
	final /= float64(tail)

	info := StepInfo{FinalValue: final}
	if final == 0 {
		return info
	}

	// Peak and overshoot.
	peak := y[0]
	peakIdx := 0
	for i, v := range y {
		if math.Abs(v) > math.Abs(peak) {
			peak = v
			peakIdx = i
		}
	}
	info.PeakTime = times[peakIdx]
	if over := (peak - final) / final; over > 0 {
		info.Overshoot = 100 * over
	}

	// Rise time between 10% and 90% crossings.
	var t10, t90 float64
	seen10 := false
	for i, v := range y {
		frac := v / final
		if !seen10 && frac >= 0.1 {
			t10 = times[i]
			seen10 = true
		}
		if frac >= 0.9 {
			t90 = times[i]
			break
		}
	}
	if t90 > t10 {
		info.RiseTime = t90 - t10
	}

	// Settling: last sample outside the 2% band.
	band := 0.02 * math.Abs(final)
	for i := n - 1; i >= 0; i-- {
		if math.Abs(y[i]-final) > band {
			if i+1 < n {
				info.SettlingTime = times[i+1]
			} else {
				info.SettlingTime = times[n-1]
			}
			break
		}
	}
	return info
}
