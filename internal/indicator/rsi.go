// Package indicator provides the pure technical-indicator functions the
// decision engine runs every cycle. All functions operate on an immutable
// snapshot of the price history and never mutate their input.
package indicator

import (
	"github.com/tradebotlab/krakenbot/pkg/errors"
)

const (
	// DefaultRSIPeriod is the minimum number of samples RSI needs.
	DefaultRSIPeriod = 14

	// rsiLossEpsilon substitutes a zero average loss to avoid division by zero.
	rsiLossEpsilon = 1e-10
)

// RSI computes the Relative Strength Index over the supplied prices.
// Differences are taken across the whole series; the period only sets the
// minimum required window. The result is in (0, 100].
// Returns an InsufficientDataError when len(prices) < period.
func RSI(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "RSI period must be positive, got %d", period)
	}

	if len(prices) < period {
		return 0, errors.NewInsufficientDataErrorf(period, len(prices),
			"RSI requires %d samples, got %d", period, len(prices))
	}

	var gainSum, lossSum float64

	var gainCount, lossCount int

	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gainSum += change
			gainCount++
		} else if change < 0 {
			lossSum += -change
			lossCount++
		}
	}

	avgGain := 0.0
	if gainCount > 0 {
		avgGain = gainSum / float64(gainCount)
	}

	avgLoss := rsiLossEpsilon
	if lossCount > 0 {
		avgLoss = lossSum / float64(lossCount)
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs)), nil
}
