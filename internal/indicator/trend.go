package indicator

// minTrendSamples is the window below which the trend is reported as flat.
// Callers treat the zero slope as neutral rather than as missing data.
const minTrendSamples = 10

// LinearTrend fits a degree-1 least-squares line to (index, price) pairs
// over the full supplied window and returns the slope. With fewer than 10
// samples it returns 0 (flat).
func LinearTrend(prices []float64) float64 {
	n := len(prices)
	if n < minTrendSamples {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64

	for i, price := range prices {
		x := float64(i)
		sumX += x
		sumY += price
		sumXY += x * price
		sumXX += x * x
	}

	fn := float64(n)

	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}

	return (fn*sumXY - sumX*sumY) / denom
}
