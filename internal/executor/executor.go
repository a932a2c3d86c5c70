// Package executor turns confirmed decisions into trades, either against the
// simulated ledger or by submitting signed orders to the exchange.
package executor

import (
	"context"

	"github.com/tradebotlab/krakenbot/internal/types"
)

// Executor performs a buy or sell decision and reports the outcome.
// Rejections are normal, expected outcomes; failures cover transport,
// authentication and exchange-side errors. Neither stops the bot loop.
type Executor interface {
	// Mode identifies which ledger the executor trades against.
	Mode() types.Mode
	// Execute performs the decided action. The decision's Action must be
	// ActionBuy or ActionSell.
	Execute(ctx context.Context, inst types.Instrument, decision types.Decision) types.ExecutionResult
}
