package analysis

import (
	"math"
	"math/cmplx"
)

// FFT computes the radix-2 Cooley-Tukey transform. Input length must be a
// power of two.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n%2 != 0 {
		panic("fft requires power of 2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)

	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

// PowerSpectrum returns FFT magnitudes up to the Nyquist bin.
func PowerSpectrum(data []float64) []float64 {
	fft := FFT(trimPow2(data))
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}

// DominantFrequency returns the peak bin of the power spectrum in Hz,
// given the sample period.
func DominantFrequency(data []float64, ts float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || ts <= 0 {
		return 0
	}
	n := 2 * len(ps)
	best := 1 // skip the DC bin
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	return float64(best) / (float64(n) * ts)
}

func trimPow2(data []float64) []float64 {
	n := 1
	for n*2 <= len(data) {
		n *= 2
	}
	return data[:n]
}
