package stats

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/tsstat/timeseries"
)

// EntropyOptions configures the entropy estimators. Fields that a given
// estimator does not use are ignored.
type EntropyOptions struct {
	Order     int     // Embedding dimension (default 2 for sample/approximate, 3 otherwise)
	Delay     int     // Embedding delay (default 1)
	Tolerance float64 // Match radius r; 0 selects 0.2 * population std
	Metric    string  // "chebyshev" (default) or "euclidean"
	Normalize bool    // Divide by the maximum entropy so the result lies in [0, 1]
	SF        float64 // Sampling frequency for the spectral estimators (default 1)
	Method    string  // "fft" (periodogram, default) or "welch"
	NPerSeg   int     // Welch segment length (default min(n, 256))
}

// DefaultTolerance is 0.2 times the population standard deviation.
func DefaultTolerance(series *timeseries.Series) float64 {
	sd, err := mstats.StandardDeviationPopulation(series.Values)
	if err != nil {
		return 0
	}
	return 0.2 * sd
}

func xlog2x(p float64) float64 {
	if p <= 0 {
		return 0
	}
	return p * math.Log2(p)
}

// PermEntropy is the Bandt-Pompe permutation entropy in bits: the Shannon
// entropy of the ordinal patterns of the embedded vectors.
func PermEntropy(series *timeseries.Series, opts EntropyOptions) (float64, error) {
	order, delay := opts.Order, opts.Delay
	if order == 0 {
		order = 3
	}
	if delay == 0 {
		delay = 1
	}
	if order < 2 {
		return math.NaN(), fmt.Errorf("permutation entropy: %w: order %d", ErrInvalidArgument, order)
	}
	emb, err := series.Embed(order, delay)
	if err != nil {
		return math.NaN(), fmt.Errorf("permutation entropy: %w: %v", ErrInsufficientData, err)
	}

	counts := make(map[int]int)
	idx := make([]int, order)
	for _, row := range emb {
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return row[idx[a]] < row[idx[b]] })
		hash, mult := 0, 1
		for _, v := range idx {
			hash += v * mult
			mult *= order
		}
		counts[hash]++
	}

	total := float64(len(emb))
	pe := 0.0
	for _, c := range counts {
		pe -= xlog2x(float64(c) / total)
	}
	if opts.Normalize {
		pe /= math.Log2(factorial(order))
	}
	return pe, nil
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

// SVDEntropy is the Shannon entropy in bits of the normalised singular
// values of the embedding matrix.
func SVDEntropy(series *timeseries.Series, opts EntropyOptions) (float64, error) {
	order, delay := opts.Order, opts.Delay
	if order == 0 {
		order = 3
	}
	if delay == 0 {
		delay = 1
	}
	if order < 2 {
		return math.NaN(), fmt.Errorf("svd entropy: %w: order %d", ErrInvalidArgument, order)
	}
	emb, err := series.Embed(order, delay)
	if err != nil {
		return math.NaN(), fmt.Errorf("svd entropy: %w: %v", ErrInsufficientData, err)
	}
	m := mat.NewDense(len(emb), order, nil)
	for i, row := range emb {
		m.SetRow(i, row)
	}
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDNone); !ok {
		return math.NaN(), fmt.Errorf("svd entropy: factorization failed")
	}
	w := svd.Values(nil)
	sum := floats.Sum(w)
	if sum == 0 {
		return math.NaN(), fmt.Errorf("svd entropy: %w", ErrConstantSeries)
	}
	e := 0.0
	for _, v := range w {
		e -= xlog2x(v / sum)
	}
	if opts.Normalize {
		e /= math.Log2(float64(order))
	}
	return e, nil
}

// Periodogram returns the one-sided power spectral density of the demeaned
// series at frequencies k*sf/n, k = 0..n/2.
func Periodogram(x []float64, sf float64) (freqs, psd []float64) {
	if sf <= 0 {
		sf = 1
	}
	n := len(x)
	mean := floats.Sum(x) / float64(n)
	seq := make([]float64, n)
	for i, v := range x {
		seq[i] = v - mean
	}
	coeff := fourier.NewFFT(n).Coefficients(nil, seq)
	psd = make([]float64, len(coeff))
	freqs = make([]float64, len(coeff))
	for k, c := range coeff {
		a := cmplx.Abs(c)
		psd[k] = a * a / (sf * float64(n))
		freqs[k] = float64(k) * sf / float64(n)
	}
	oneSided(psd, n)
	return freqs, psd
}

// oneSided doubles every bin except DC and, for even n, Nyquist.
func oneSided(psd []float64, n int) {
	last := len(psd)
	if n%2 == 0 {
		last--
	}
	for k := 1; k < last; k++ {
		psd[k] *= 2
	}
}

// Welch averages Hann-windowed periodograms over segments of nperseg
// samples with 50% overlap.
func Welch(x []float64, sf float64, nperseg int) (freqs, psd []float64) {
	if sf <= 0 {
		sf = 1
	}
	n := len(x)
	if nperseg <= 0 || nperseg > n {
		nperseg = min(n, 256)
	}
	window := make([]float64, nperseg)
	wss := 0.0
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(nperseg))
		wss += window[i] * window[i]
	}
	step := nperseg - nperseg/2
	fft := fourier.NewFFT(nperseg)
	seg := make([]float64, nperseg)
	var coeff []complex128
	psd = make([]float64, nperseg/2+1)
	segments := 0
	for start := 0; start+nperseg <= n; start += step {
		mean := floats.Sum(x[start:start+nperseg]) / float64(nperseg)
		for i := range seg {
			seg[i] = (x[start+i] - mean) * window[i]
		}
		coeff = fft.Coefficients(coeff, seg)
		for k, c := range coeff {
			a := cmplx.Abs(c)
			psd[k] += a * a / (sf * wss)
		}
		segments++
	}
	floats.Scale(1/float64(segments), psd)
	oneSided(psd, nperseg)
	freqs = make([]float64, len(psd))
	for k := range freqs {
		freqs[k] = float64(k) * sf / float64(nperseg)
	}
	return freqs, psd
}

// SpectralEntropy is the Shannon entropy in bits of the normalised power
// spectral density.
func SpectralEntropy(series *timeseries.Series, opts EntropyOptions) (float64, error) {
	if series.Len() < 2 {
		return math.NaN(), fmt.Errorf("spectral entropy: %w: %d observations", ErrInsufficientData, series.Len())
	}
	var psd []float64
	switch opts.Method {
	case "", "fft":
		_, psd = Periodogram(series.Values, opts.SF)
	case "welch":
		_, psd = Welch(series.Values, opts.SF, opts.NPerSeg)
	default:
		return math.NaN(), fmt.Errorf("spectral entropy: %w: method %q", ErrInvalidArgument, opts.Method)
	}
	total := floats.Sum(psd)
	if total == 0 {
		return math.NaN(), fmt.Errorf("spectral entropy: %w", ErrConstantSeries)
	}
	e := 0.0
	for _, p := range psd {
		e -= xlog2x(p / total)
	}
	if opts.Normalize {
		e /= math.Log2(float64(len(psd)))
	}
	return e, nil
}

type distanceFunc func(a, b mstats.Float64Data) (float64, error)

func metricFunc(name string) (distanceFunc, error) {
	switch name {
	case "", "chebyshev":
		return mstats.ChebyshevDistance, nil
	case "euclidean":
		return mstats.EuclideanDistance, nil
	}
	return nil, fmt.Errorf("%w: metric %q", ErrInvalidArgument, name)
}

// matchCounts returns, for each embedded vector, the number of vectors
// (itself included) within distance r.
func matchCounts(emb [][]float64, r float64, dist distanceFunc) ([]float64, error) {
	counts := make([]float64, len(emb))
	for i := range emb {
		counts[i]++
		for j := i + 1; j < len(emb); j++ {
			d, err := dist(emb[i], emb[j])
			if err != nil {
				return nil, err
			}
			if d <= r {
				counts[i]++
				counts[j]++
			}
		}
	}
	return counts, nil
}

// entropyCounts returns the match counts at dimensions order and order+1.
func entropyCounts(series *timeseries.Series, opts EntropyOptions, approximate bool) (c1, c2 []float64, err error) {
	order := opts.Order
	if order == 0 {
		order = 2
	}
	if order < 1 {
		return nil, nil, fmt.Errorf("%w: order %d", ErrInvalidArgument, order)
	}
	r := opts.Tolerance
	if r == 0 {
		r = DefaultTolerance(series)
	}
	if r < 0 {
		return nil, nil, fmt.Errorf("%w: tolerance %g", ErrInvalidArgument, r)
	}
	dist, err := metricFunc(opts.Metric)
	if err != nil {
		return nil, nil, err
	}
	emb1, err := series.Embed(order, 1)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInsufficientData, err)
	}
	emb2, err := series.Embed(order+1, 1)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInsufficientData, err)
	}
	if !approximate {
		emb1 = emb1[:len(emb1)-1]
	}
	if c1, err = matchCounts(emb1, r, dist); err != nil {
		return nil, nil, err
	}
	if c2, err = matchCounts(emb2, r, dist); err != nil {
		return nil, nil, err
	}
	return c1, c2, nil
}

// ApproxEntropy is Pincus' approximate entropy (natural log) with
// self-matches counted.
func ApproxEntropy(series *timeseries.Series, opts EntropyOptions) (float64, error) {
	c1, c2, err := entropyCounts(series, opts, true)
	if err != nil {
		return math.NaN(), fmt.Errorf("approximate entropy: %w", err)
	}
	phi := func(counts []float64) float64 {
		s := 0.0
		for _, c := range counts {
			s += math.Log(c / float64(len(counts)))
		}
		return s / float64(len(counts))
	}
	return phi(c1) - phi(c2), nil
}

// SampleEntropy is Richman and Moorman's sample entropy (natural log),
// excluding self-matches. It is +Inf when no template of length order+1
// matches and NaN when no template of length order matches either.
func SampleEntropy(series *timeseries.Series, opts EntropyOptions) (float64, error) {
	c1, c2, err := entropyCounts(series, opts, false)
	if err != nil {
		return math.NaN(), fmt.Errorf("sample entropy: %w", err)
	}
	phi := func(counts []float64) float64 {
		s := 0.0
		for _, c := range counts {
			s += (c - 1) / float64(len(counts)-1)
		}
		return s / float64(len(counts))
	}
	p1, p2 := phi(c1), phi(c2)
	if p1 == 0 {
		return math.NaN(), nil
	}
	return -math.Log(p2 / p1), nil
}
