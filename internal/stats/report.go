package stats

import (
	"encoding/json"
	"math"
)

// Name identifies one statistic of the report.
type Name string

const (
	Count             Name = "Count"
	Sum               Name = "Sum"
	Mean              Name = "Mean"
	StandardError     Name = "Standard Error"
	Median            Name = "Median"
	Mode              Name = "Mode"
	StandardDeviation Name = "Standard Deviation"
	SampleVariance    Name = "Sample Variance"
	Kurtosis          Name = "Kurtosis"
	Skewness          Name = "Skewness"
	Range             Name = "Range"
	Minimum           Name = "Minimum"
	Maximum           Name = "Maximum"
)

// Sample is the numeric sequence a report is computed from.
type Sample []float64

// Entry is a single row of a Report. Value is NaN whenever Defined is false.
type Entry struct {
	Name    Name
	Value   float64
	Defined bool
}

func undefined(name Name) Entry {
	return Entry{Name: name, Value: math.NaN()}
}

// Report holds one entry per canonical statistic, in canonical order.
// It is never modified after Compute returns it.
type Report struct {
	entries []Entry
}

// Entries returns a copy of the report rows.
func (r Report) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r Report) Len() int {
	return len(r.entries)
}

// Lookup returns the entry for name.
func (r Report) Lookup(name Name) (Entry, bool) {
	for _, e := range r.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

type entryJSON struct {
	Name    Name     `json:"name"`
	Value   *float64 `json:"value"`
	Defined bool     `json:"defined"`
}

// MarshalJSON encodes the report as an ordered array; undefined values become null.
func (r Report) MarshalJSON() ([]byte, error) {
	rows := make([]entryJSON, len(r.entries))
	for i, e := range r.entries {
		rows[i] = entryJSON{Name: e.Name, Defined: e.Defined}
		if e.Defined {
			v := e.Value
			rows[i].Value = &v
		}
	}
	return json.Marshal(rows)
}
