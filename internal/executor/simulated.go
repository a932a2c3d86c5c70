package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tradebotlab/krakenbot/internal/ledger"
	"github.com/tradebotlab/krakenbot/internal/types"
)

// Simulated executes trades against the in-process ledger. It is the only
// mutator of the ledger it owns.
type Simulated struct {
	ledger *ledger.Ledger
	now    func() time.Time
}

// NewSimulated creates a simulated executor over the given ledger.
func NewSimulated(l *ledger.Ledger) *Simulated {
	return &Simulated{
		ledger: l,
		now:    time.Now,
	}
}

// Mode implements Executor.
func (s *Simulated) Mode() types.Mode {
	return types.ModeSimulated
}

// Ledger exposes the owned ledger for snapshot publication.
func (s *Simulated) Ledger() *ledger.Ledger {
	return s.ledger
}

// Execute implements Executor. A buy is rejected when cash is insufficient,
// a sell when the held quantity is insufficient; rejections never mutate
// the ledger.
func (s *Simulated) Execute(_ context.Context, inst types.Instrument, decision types.Decision) types.ExecutionResult {
	switch decision.Action {
	case types.ActionBuy:
		if !s.ledger.Buy(inst.Pair, decision.Volume, decision.Price) {
			return types.Rejected(fmt.Sprintf("insufficient cash for BUY %v %s @ %.2f",
				decision.Volume, inst.Pair, decision.Price))
		}

		return types.Executed(s.record(types.SideBuy, inst, decision))

	case types.ActionSell:
		if !s.ledger.Sell(inst.Pair, decision.Volume, decision.Price) {
			return types.Rejected(fmt.Sprintf("insufficient %s for SELL %v @ %.2f",
				inst.Pair, decision.Volume, decision.Price))
		}

		return types.Executed(s.record(types.SideSell, inst, decision))

	default:
		return types.Rejected(fmt.Sprintf("nothing to execute for action %s", decision.Action))
	}
}

func (s *Simulated) record(side types.Side, inst types.Instrument, decision types.Decision) types.TradeRecord {
	return types.TradeRecord{
		ID:        uuid.NewString(),
		Mode:      types.ModeSimulated,
		Side:      side,
		Pair:      inst.Pair,
		Volume:    decision.Volume,
		Price:     decision.Price,
		Timestamp: s.now(),
		Rationale: decision.Rationale,
	}
}
