package impact

// Trend labels which way a metric moved after the pivot relative to its
// prior trajectory.
type Trend string

const (
	// TrendInvalid marks an undefined result.
	TrendInvalid Trend = "I"
	// TrendPositive: the metric grew relative to the baseline trend.
	TrendPositive Trend = "P"
	// TrendNegative: the metric shrank relative to the baseline trend.
	TrendNegative Trend = "N"
	// TrendFlipToPositive: a falling pre trend reversed into growth.
	TrendFlipToPositive Trend = "FP"
	// TrendFlipToNegative: a rising pre trend reversed into decline.
	TrendFlipToNegative Trend = "FN"
)

// Classify maps a result to a trend label. Slope-sign reversals take
// precedence over the score's sign because a flip is the stronger signal.
func Classify(r Result) Trend {
	if !r.Defined {
		return TrendInvalid
	}

	if r.Pre.Slope < 0 && r.Post.Slope > 0 {
		return TrendFlipToPositive
	}
	if r.Pre.Slope > 0 && r.Post.Slope < 0 {
		return TrendFlipToNegative
	}

	if r.Score < 0 {
		return TrendNegative
	}
	return TrendPositive
}
