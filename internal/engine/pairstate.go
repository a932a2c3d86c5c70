package engine

import (
	"time"

	"github.com/moznion/go-optional"
)

// PairState is the per-instrument trade memory the guards consult: when the
// pair last traded and at what price it was last bought. It is mutated only
// after the executor confirms a trade.
type PairState struct {
	lastTradeTime optional.Option[time.Time]
	lastBuyPrice  optional.Option[float64]
}

// NewPairState returns an empty state: no prior trade, no prior buy.
func NewPairState() *PairState {
	return &PairState{
		lastTradeTime: optional.None[time.Time](),
		lastBuyPrice:  optional.None[float64](),
	}
}

// LastTradeTime returns the time of the most recent confirmed trade.
func (s *PairState) LastTradeTime() optional.Option[time.Time] {
	return s.lastTradeTime
}

// LastBuyPrice returns the price of the most recent confirmed buy.
func (s *PairState) LastBuyPrice() optional.Option[float64] {
	return s.lastBuyPrice
}

// MarkBuy records a confirmed buy at the given price.
func (s *PairState) MarkBuy(price float64, now time.Time) {
	s.lastTradeTime = optional.Some(now)
	s.lastBuyPrice = optional.Some(price)
}

// MarkSell records a confirmed sell. The last buy price is cleared so a
// stale value cannot corrupt the re-entry guard on the next buy cycle.
func (s *PairState) MarkSell(now time.Time) {
	s.lastTradeTime = optional.Some(now)
	s.lastBuyPrice = optional.None[float64]()
}
