package stats

import (
	"math"
	"slices"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

type rule struct {
	name    Name
	minN    int
	compute func(data mstats.Float64Data) (float64, error)
}

// battery lists every statistic in report order together with the
// smallest sample size for which it is defined.
var battery = []rule{
	{Count, 0, func(d mstats.Float64Data) (float64, error) { return float64(d.Len()), nil }},
	{Sum, 0, mstats.Sum},
	{Mean, 1, mean},
	{StandardError, 2, standardError},
	{Median, 1, median},
	{Mode, 1, smallestMode},
	{StandardDeviation, 2, sampleDeviation},
	{SampleVariance, 2, sampleVariance},
	{Kurtosis, 2, excessKurtosis},
	{Skewness, 2, skewness},
	{Range, 2, valueRange},
	{Minimum, 1, mstats.Min},
	{Maximum, 1, mstats.Max},
}

// Names returns the statistic names in report order.
func Names() []Name {
	names := make([]Name, len(battery))
	for i, r := range battery {
		names[i] = r.name
	}
	return names
}

// Engine computes descriptive statistics. It holds no state and is safe for
// concurrent use.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Compute evaluates the full battery over sample. It never fails: statistics
// that cannot be computed for the sample size are marked undefined, and an
// empty sample yields a report with every entry undefined.
func (e *Engine) Compute(sample Sample) Report {
	entries := make([]Entry, len(battery))

	if len(sample) == 0 {
		for i, r := range battery {
			entries[i] = undefined(r.name)
		}
		return Report{entries: entries}
	}

	data := mstats.Float64Data(sample)
	for i, r := range battery {
		entries[i] = evaluate(r, data)
	}
	return Report{entries: entries}
}

func evaluate(r rule, data mstats.Float64Data) Entry {
	if data.Len() < r.minN {
		return undefined(r.name)
	}
	v, err := r.compute(data)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return undefined(r.name)
	}
	return Entry{Name: r.name, Value: v, Defined: true}
}

var (
	mean      = rescaled(mstats.Mean)
	median    = rescaled(mstats.Median)
	deviation = rescaled(mstats.StandardDeviationSample)
)

// rescaled retries f on the sample divided by a power of two when the direct
// result overflows, so an intermediate sum cannot hide a finite answer.
func rescaled(f func(mstats.Float64Data) (float64, error)) func(mstats.Float64Data) (float64, error) {
	return func(d mstats.Float64Data) (float64, error) {
		v, err := f(d)
		if err != nil || !(math.IsInf(v, 0) || math.IsNaN(v)) {
			return v, err
		}
		peak := 0.0
		for _, x := range d {
			peak = math.Max(peak, math.Abs(x))
		}
		_, exp := math.Frexp(peak)
		scale := math.Ldexp(1, exp-1)
		scaled := make(mstats.Float64Data, len(d))
		for i, x := range d {
			scaled[i] = x / scale
		}
		v, err = f(scaled)
		if err != nil {
			return math.NaN(), err
		}
		return v * scale, nil
	}
}

// noSpread reports whether every value in d is identical.
func noSpread(d mstats.Float64Data) bool {
	return slices.Min(d) == slices.Max(d)
}

// sampleDeviation is the n-1 standard deviation; exactly 0 for a constant sample.
func sampleDeviation(d mstats.Float64Data) (float64, error) {
	if noSpread(d) {
		return 0, nil
	}
	return deviation(d)
}

func standardError(d mstats.Float64Data) (float64, error) {
	sd, err := sampleDeviation(d)
	if err != nil {
		return math.NaN(), err
	}
	return sd / math.Sqrt(float64(d.Len())), nil
}

// sampleVariance squares the sample deviation so both entries agree exactly.
func sampleVariance(d mstats.Float64Data) (float64, error) {
	sd, err := sampleDeviation(d)
	if err != nil {
		return math.NaN(), err
	}
	return sd * sd, nil
}

// smallestMode returns the most frequent value, preferring the smallest on ties.
func smallestMode(d mstats.Float64Data) (float64, error) {
	sorted := slices.Clone([]float64(d))
	slices.Sort(sorted)

	best, bestCount := sorted[0], 0
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestCount {
			best, bestCount = sorted[i], j-i
		}
		i = j
	}
	return best, nil
}

// skewness is the moment coefficient g1 = m3 / m2^1.5. It is NaN when the
// sample has no spread, where rounding would otherwise leave m2 slightly above 0.
func skewness(d mstats.Float64Data) (float64, error) {
	if noSpread(d) {
		return math.NaN(), nil
	}
	m2 := stat.Moment(2, d, nil)
	m3 := stat.Moment(3, d, nil)
	return m3 / math.Pow(m2, 1.5), nil
}

// excessKurtosis is g2 = m4 / m2^2 - 3, so a normal distribution reads 0.
func excessKurtosis(d mstats.Float64Data) (float64, error) {
	if noSpread(d) {
		return math.NaN(), nil
	}
	m2 := stat.Moment(2, d, nil)
	m4 := stat.Moment(4, d, nil)
	return m4/(m2*m2) - 3, nil
}

func valueRange(d mstats.Float64Data) (float64, error) {
	lo, err := mstats.Min(d)
	if err != nil {
		return math.NaN(), err
	}
	hi, err := mstats.Max(d)
	if err != nil {
		return math.NaN(), err
	}
	return hi - lo, nil
}
