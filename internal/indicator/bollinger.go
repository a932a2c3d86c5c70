package indicator

import (
	"math"

	"github.com/tradebotlab/krakenbot/internal/types"
	"github.com/tradebotlab/krakenbot/pkg/errors"
)

const (
	// DefaultBollingerPeriod is the rolling window for the bands.
	DefaultBollingerPeriod = 20
	// DefaultBollingerStdMultiplier is the band width in standard deviations.
	DefaultBollingerStdMultiplier = 2.0
)

// Bollinger computes the mean +/- stdMult*stddev envelope over the last
// period samples. The standard deviation is the population variant.
// Returns an InsufficientDataError when len(prices) < period.
func Bollinger(prices []float64, period int, stdMult float64) (types.Bands, error) {
	if period <= 0 {
		return types.Bands{}, errors.Newf(errors.ErrCodeInvalidPeriod,
			"Bollinger period must be positive, got %d", period)
	}

	if len(prices) < period {
		return types.Bands{}, errors.NewInsufficientDataErrorf(period, len(prices),
			"Bollinger requires %d samples, got %d", period, len(prices))
	}

	window := prices[len(prices)-period:]

	var sum float64
	for _, p := range window {
		sum += p
	}

	mean := sum / float64(period)

	var variance float64
	for _, p := range window {
		variance += (p - mean) * (p - mean)
	}

	variance /= float64(period)
	std := math.Sqrt(variance)

	return types.Bands{
		Middle: mean,
		Upper:  mean + stdMult*std,
		Lower:  mean - stdMult*std,
	}, nil
}
