package bot

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tradebotlab/krakenbot/internal/types"
)

// publisher holds the latest snapshot and fans it out on a
// latest-value channel. A consumer that falls behind skips intermediate
// snapshots instead of blocking the loop. Every reader gets its own deep
// copy; mutating a snapshot never affects another reader or the loop.
type publisher struct {
	mu     sync.RWMutex
	snap   types.Snapshot
	stream chan types.Snapshot
}

func newPublisher() *publisher {
	return &publisher{
		mu:     sync.RWMutex{},
		snap:   types.Snapshot{},
		stream: make(chan types.Snapshot, 1),
	}
}

func (p *publisher) publish(snap types.Snapshot) {
	p.mu.Lock()
	p.snap = snap
	p.mu.Unlock()

	out := cloneSnapshot(snap)

	// Replace a stale buffered snapshot so the channel always carries
	// the newest one.
	select {
	case p.stream <- out:
	default:
		select {
		case <-p.stream:
		default:
		}

		select {
		case p.stream <- out:
		default:
		}
	}
}

func (p *publisher) latest() types.Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return cloneSnapshot(p.snap)
}

func (p *publisher) updates() <-chan types.Snapshot {
	return p.stream
}

func cloneSnapshot(s types.Snapshot) types.Snapshot {
	pairs := make(map[string]types.PairSnapshot, len(s.Pairs))

	for pair, ps := range s.Pairs {
		prices := make([]float64, len(ps.Prices))
		copy(prices, ps.Prices)
		ps.Prices = prices
		pairs[pair] = ps
	}

	s.Pairs = pairs

	trades := make([]types.TradeRecord, len(s.Trades))
	copy(trades, s.Trades)
	s.Trades = trades

	holdings := make(map[string]decimal.Decimal, len(s.Ledger.Holdings))
	for asset, qty := range s.Ledger.Holdings {
		holdings[asset] = qty
	}

	s.Ledger.Holdings = holdings

	return s
}
