package indicator

import (
	"github.com/tradebotlab/krakenbot/internal/types"
	"github.com/tradebotlab/krakenbot/pkg/errors"
)

// DefaultFibLookback is the number of recent samples the retracement
// levels are derived from.
const DefaultFibLookback = 50

// FibonacciLevels derives retracement levels from the high/low range of the
// most recent lookback samples (or all samples when fewer are available).
// Returns an InsufficientDataError when fewer than 2 samples are supplied.
func FibonacciLevels(prices []float64, lookback int) (types.FibLevels, error) {
	if lookback <= 0 {
		return types.FibLevels{}, errors.Newf(errors.ErrCodeInvalidPeriod,
			"Fibonacci lookback must be positive, got %d", lookback)
	}

	if len(prices) < 2 {
		return types.FibLevels{}, errors.NewInsufficientDataErrorf(2, len(prices),
			"Fibonacci levels require 2 samples, got %d", len(prices))
	}

	recent := prices
	if len(prices) > lookback {
		recent = prices[len(prices)-lookback:]
	}

	high := recent[0]
	low := recent[0]

	for _, p := range recent[1:] {
		if p > high {
			high = p
		}

		if p < low {
			low = p
		}
	}

	diff := high - low

	return types.FibLevels{
		Level0:   high,
		Level382: high - diff*0.382,
		Level618: high - diff*0.618,
	}, nil
}
