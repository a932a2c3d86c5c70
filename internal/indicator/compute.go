package indicator

import (
	"github.com/moznion/go-optional"

	"github.com/tradebotlab/krakenbot/internal/types"
)

// Set bundles one cycle's indicator outputs for a pair. Optional values are
// None while the history is shorter than the indicator's minimum window.
type Set struct {
	RSI   optional.Option[float64]
	Bands optional.Option[types.Bands]
	Trend float64
	Fib   optional.Option[types.FibLevels]
}

// Compute evaluates all indicators over one price-history snapshot with the
// default parameters. Insufficient-data results are folded into None values;
// the trend is 0 (neutral) on short windows by design.
func Compute(prices []float64) Set {
	set := Set{
		RSI:   optional.None[float64](),
		Bands: optional.None[types.Bands](),
		Trend: LinearTrend(prices),
		Fib:   optional.None[types.FibLevels](),
	}

	if rsi, err := RSI(prices, DefaultRSIPeriod); err == nil {
		set.RSI = optional.Some(rsi)
	}

	if bands, err := Bollinger(prices, DefaultBollingerPeriod, DefaultBollingerStdMultiplier); err == nil {
		set.Bands = optional.Some(bands)
	}

	if fib, err := FibonacciLevels(prices, DefaultFibLookback); err == nil {
		set.Fib = optional.Some(fib)
	}

	return set
}
