package impact

// linearFit fits y = intercept + slope*x by ordinary least squares.
// With fewer than two points, or no variation in x, the fit degenerates to
// a flat line through the mean.
func linearFit(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))
	if n == 0 {
		return 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	// slope = (n∑XY - ∑X∑Y) / (n∑X² - (∑X)²)
	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return 0, sumY / n
	}

	slope = (n*sumXY - sumX*sumY) / denominator
	intercept = sumY/n - slope*sumX/n
	return slope, intercept
}

// integrateLine integrates slope*x + intercept over [lo, hi].
func integrateLine(slope, intercept, lo, hi float64) float64 {
	return slope*(hi*hi-lo*lo)/2 + intercept*(hi-lo)
}

// integrateClampedLine integrates max(0, slope*x + intercept) over
// [lo, hi] exactly, splitting at the line's zero crossing. Matches the
// quadrature of the clamped function without the numeric machinery.
func integrateClampedLine(slope, intercept, lo, hi float64) float64 {
	if slope == 0 {
		if intercept <= 0 {
			return 0
		}
		return intercept * (hi - lo)
	}

	root := -intercept / slope
	if slope > 0 {
		// Line is positive to the right of the root.
		switch {
		case root <= lo:
			return integrateLine(slope, intercept, lo, hi)
		case root >= hi:
			return 0
		default:
			return integrateLine(slope, intercept, root, hi)
		}
	}

	// Line is positive to the left of the root.
	switch {
	case root >= hi:
		return integrateLine(slope, intercept, lo, hi)
	case root <= lo:
		return 0
	default:
		return integrateLine(slope, intercept, lo, root)
	}
}
