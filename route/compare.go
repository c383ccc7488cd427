package route

// Comparison compares a route with the baseline.
type Comparison struct {
	Baseline    Route
	Route       Route
	PercentDiff float64 // PercentDiff is (intensity/baseline − 1) × 100.
	Compliant   bool    // Compliant is true when the intensity is at most the target.
}

// Compare compares every non baseline route with the baseline route.
func Compare(routes []Route, target float64) ([]Comparison, error) {
	baseline, ok := Baseline(routes)
	if !ok {
		return nil, ErrNoBaseline
	}
	var out []Comparison
	for _, r := range routes {
		if r.IsBaseline {
			continue
		}
		out = append(out, Comparison{
			Baseline:    baseline,
			Route:       r,
			PercentDiff: (r.GHGIntensity/baseline.GHGIntensity - 1) * 100,
			Compliant:   r.GHGIntensity <= target,
		})
	}
	return out, nil
}

// CompliantCount returns how many comparisons are compliant.
func CompliantCount(cs []Comparison) int {
	n := 0
	for _, c := range cs {
		if c.Compliant {
			n++
		}
	}
	return n
}
