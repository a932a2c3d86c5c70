package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// ChartLevels are the derived per-pair price levels published for
// presentation collaborators. The core computes them; it never renders.
type ChartLevels struct {
	// NextBuy is lastPrice * (1 - reentryThreshold).
	NextBuy float64 `json:"next_buy"`
	// NextSell is lastPrice * (1 + takeProfitFactor).
	NextSell float64 `json:"next_sell"`
	// StopLoss is lastPrice * (1 - stopLossFactor).
	StopLoss float64 `json:"stop_loss"`
}

// PairSnapshot is the published per-instrument view for one cycle.
type PairSnapshot struct {
	Pair string `json:"pair"`
	// Prices is a copy of the bounded price history, oldest first.
	Prices []float64 `json:"prices"`
	// LastPrice is the most recent fetched price, zero if none yet.
	LastPrice float64                     `json:"last_price"`
	RSI       optional.Option[float64]    `json:"rsi"`
	Bands     optional.Option[Bands]      `json:"bands"`
	Trend     float64                     `json:"trend"`
	Fib       optional.Option[FibLevels]  `json:"fib"`
	Levels    optional.Option[ChartLevels] `json:"levels"`
	// LastDecision is the decision taken for this pair in the cycle.
	LastDecision Decision `json:"last_decision"`
}

// LedgerView is the published ledger/balance state.
type LedgerView struct {
	Cash     decimal.Decimal            `json:"cash"`
	Holdings map[string]decimal.Decimal `json:"holdings"`
}

// Snapshot is the immutable aggregate the bot loop publishes after every
// cycle. External readers only ever see copies; mutating a snapshot has no
// effect on loop-owned state.
type Snapshot struct {
	Time  time.Time               `json:"time"`
	Cycle uint64                  `json:"cycle"`
	Mode  Mode                    `json:"mode"`
	Pairs map[string]PairSnapshot `json:"pairs"`
	// Trades is the tail of the trade log, oldest first.
	Trades []TradeRecord `json:"trades"`
	Ledger LedgerView    `json:"ledger"`
}
