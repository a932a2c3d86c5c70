// Package ledger implements the simulated wallet and asset holdings.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/tradebotlab/krakenbot/internal/types"
)

// Ledger tracks simulated cash and per-pair holdings. Balances can never go
// negative: a trade that would overdraw is turned down without mutation.
// It is not safe for concurrent use; the bot loop is its sole mutator.
type Ledger struct {
	cash     decimal.Decimal
	holdings map[string]decimal.Decimal
}

// New creates a ledger with the given initial quote-currency cash.
func New(initialCash float64) *Ledger {
	return &Ledger{
		cash:     decimal.NewFromFloat(initialCash),
		holdings: make(map[string]decimal.Decimal),
	}
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() decimal.Decimal {
	return l.cash
}

// Holding returns the held quantity for a pair (zero if never traded).
func (l *Ledger) Holding(pair string) decimal.Decimal {
	return l.holdings[pair]
}

// Buy debits volume*price from cash and credits the pair's holding.
// ok is false (with no mutation) when cash is insufficient.
func (l *Ledger) Buy(pair string, volume, price float64) (ok bool) {
	cost := decimal.NewFromFloat(volume).Mul(decimal.NewFromFloat(price))
	if l.cash.LessThan(cost) {
		return false
	}

	l.cash = l.cash.Sub(cost)
	l.holdings[pair] = l.holdings[pair].Add(decimal.NewFromFloat(volume))

	return true
}

// Sell debits volume from the pair's holding and credits volume*price to
// cash. ok is false (with no mutation) when the holding is insufficient.
func (l *Ledger) Sell(pair string, volume, price float64) (ok bool) {
	vol := decimal.NewFromFloat(volume)
	if l.holdings[pair].LessThan(vol) {
		return false
	}

	l.holdings[pair] = l.holdings[pair].Sub(vol)
	l.cash = l.cash.Add(vol.Mul(decimal.NewFromFloat(price)))

	return true
}

// View returns a copy of the ledger state for publication.
func (l *Ledger) View() types.LedgerView {
	holdings := make(map[string]decimal.Decimal, len(l.holdings))
	for pair, qty := range l.holdings {
		holdings[pair] = qty
	}

	return types.LedgerView{
		Cash:     l.cash,
		Holdings: holdings,
	}
}

// Reset restores the initial cash and clears all holdings. Used when the
// operator switches back to simulation mode.
func (l *Ledger) Reset(initialCash float64) {
	l.cash = decimal.NewFromFloat(initialCash)
	l.holdings = make(map[string]decimal.Decimal)
}
