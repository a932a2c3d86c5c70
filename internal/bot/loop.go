// Package bot runs the trading loop: fetch prices, update history, compute
// indicators, decide, execute, publish a snapshot. One background task owns
// all mutable trading state; everyone else reads published copies.
package bot

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tradebotlab/krakenbot/internal/config"
	"github.com/tradebotlab/krakenbot/internal/engine"
	"github.com/tradebotlab/krakenbot/internal/executor"
	"github.com/tradebotlab/krakenbot/internal/history"
	"github.com/tradebotlab/krakenbot/internal/indicator"
	"github.com/tradebotlab/krakenbot/internal/ledger"
	"github.com/tradebotlab/krakenbot/internal/logger"
	"github.com/tradebotlab/krakenbot/internal/tradelog"
	"github.com/tradebotlab/krakenbot/internal/types"
	"github.com/tradebotlab/krakenbot/pkg/errors"
)

// PriceSource fetches the latest trade price for one pair.
type PriceSource interface {
	Ticker(ctx context.Context, pair string) (float64, error)
}

// commandKind enumerates the runtime instrument-set mutations.
type commandKind int

const (
	commandAdd commandKind = iota
	commandRemove
)

// command is an instrument-set change queued for the next cycle boundary.
type command struct {
	kind commandKind
	inst types.Instrument
	pair string
}

const commandQueueSize = 64

// Loop is the bot's scheduling task. It is the sole mutator of the price
// histories, the pair states and the ledger; external readers only ever get
// the published snapshot.
type Loop struct {
	cfg    *config.Config
	source PriceSource
	exec   executor.Executor
	engine *engine.Engine
	ledger *ledger.Ledger
	trades *tradelog.TradeLog
	log    *logger.Logger

	instruments []types.Instrument
	histories   map[string]*history.PriceHistory
	commands    chan command

	pub   *publisher
	cycle uint64
}

// NewLoop creates a loop over the configured instrument set. ldgr may be
// nil in real mode; the published ledger view is then empty.
func NewLoop(
	cfg *config.Config,
	source PriceSource,
	exec executor.Executor,
	eng *engine.Engine,
	ldgr *ledger.Ledger,
	trades *tradelog.TradeLog,
	log *logger.Logger,
) *Loop {
	loop := &Loop{
		cfg:         cfg,
		source:      source,
		exec:        exec,
		engine:      eng,
		ledger:      ldgr,
		trades:      trades,
		log:         log,
		instruments: nil,
		histories:   make(map[string]*history.PriceHistory),
		commands:    make(chan command, commandQueueSize),
		pub:         newPublisher(),
		cycle:       0,
	}

	for _, inst := range cfg.Instruments {
		loop.instruments = append(loop.instruments, inst)
		loop.histories[inst.Pair] = history.NewPriceHistory()
	}

	return loop
}

// AddInstrument queues a pair addition; it takes effect at the next cycle
// boundary. Duplicate pairs are rejected when the command is applied.
func (b *Loop) AddInstrument(inst types.Instrument) error {
	if err := inst.Validate(); err != nil {
		return err
	}

	select {
	case b.commands <- command{kind: commandAdd, inst: inst, pair: inst.Pair}:
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidParameter, "instrument command queue is full")
	}
}

// RemoveInstrument queues a pair removal for the next cycle boundary.
func (b *Loop) RemoveInstrument(pair string) error {
	select {
	case b.commands <- command{kind: commandRemove, inst: types.Instrument{Pair: "", BaseAsset: "", Volume: 0}, pair: pair}:
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidParameter, "instrument command queue is full")
	}
}

// Snapshot returns the most recently published snapshot.
func (b *Loop) Snapshot() types.Snapshot {
	return b.pub.latest()
}

// Updates returns a channel carrying each published snapshot. Slow
// consumers only ever see the most recent one.
func (b *Loop) Updates() <-chan types.Snapshot {
	return b.pub.updates()
}

// Run executes cycles at the configured period until ctx is cancelled.
// Cancellation is honored between instruments, never mid-call: an in-flight
// exchange request always completes or times out on its own.
func (b *Loop) Run(ctx context.Context) error {
	if b.cfg.SeedInitialPositions && b.exec.Mode() == types.ModeSimulated {
		b.seedInitialPositions(ctx)
	}

	ticker := time.NewTicker(b.cfg.CycleInterval())
	defer ticker.Stop()

	b.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			b.runCycle(ctx)
		}
	}
}

// runCycle processes every instrument once and publishes the snapshot.
func (b *Loop) runCycle(ctx context.Context) {
	b.applyCommands()

	b.cycle++

	// The instrument set is frozen for the duration of the cycle.
	instruments := make([]types.Instrument, len(b.instruments))
	copy(instruments, b.instruments)

	pairs := make(map[string]types.PairSnapshot, len(instruments))

	for _, inst := range instruments {
		if ctx.Err() != nil {
			return
		}

		pairs[inst.Pair] = b.processInstrument(ctx, inst)
	}

	b.pub.publish(b.buildSnapshot(pairs))
}

// processInstrument runs one fetch-decide-execute pass for a pair.
func (b *Loop) processInstrument(ctx context.Context, inst types.Instrument) types.PairSnapshot {
	hist := b.histories[inst.Pair]

	price, err := b.source.Ticker(ctx, inst.Pair)
	if err != nil {
		// No price this cycle; the pair is retried on the next one.
		b.log.Warn("no price for pair", zap.String("pair", inst.Pair), zap.Error(err))

		return b.pairSnapshot(inst, hist, types.Hold(inst.Pair, "price unavailable"))
	}

	hist.Append(price)

	ind := indicator.Compute(hist.Snapshot())
	decision := b.engine.Decide(inst, price, ind)

	if decision.Action != types.ActionHold {
		b.execute(ctx, inst, decision)
	}

	return b.pairSnapshot(inst, hist, decision)
}

// execute performs a non-hold decision and applies the post-trade state
// transition only when the executor confirms.
func (b *Loop) execute(ctx context.Context, inst types.Instrument, decision types.Decision) {
	result := b.exec.Execute(ctx, inst, decision)

	switch result.Status {
	case types.StatusExecuted:
		record := result.Record.Unwrap()
		b.engine.MarkExecuted(decision, record.Timestamp)

		if err := b.trades.Append(record); err != nil {
			b.log.Error("failed to persist trade record", zap.String("id", record.ID), zap.Error(err))
		}

		b.log.Info("trade executed",
			zap.String("mode", string(record.Mode)),
			zap.String("side", string(record.Side)),
			zap.String("pair", record.Pair),
			zap.Float64("volume", record.Volume),
			zap.Float64("price", record.Price),
			zap.String("rationale", record.Rationale))

	case types.StatusRejected:
		b.log.Info("trade rejected",
			zap.String("pair", inst.Pair),
			zap.String("action", string(decision.Action)),
			zap.String("reason", result.Reason))

	case types.StatusFailed:
		b.log.Warn("trade failed",
			zap.String("pair", inst.Pair),
			zap.String("action", string(decision.Action)),
			zap.String("reason", result.Reason))
	}
}

// seedInitialPositions performs one simulated buy per configured pair at
// the first fetched price, before the regular cycles start.
func (b *Loop) seedInitialPositions(ctx context.Context) {
	for _, inst := range b.instruments {
		if ctx.Err() != nil {
			return
		}

		price, err := b.source.Ticker(ctx, inst.Pair)
		if err != nil {
			b.log.Warn("skipping initial position", zap.String("pair", inst.Pair), zap.Error(err))

			continue
		}

		decision := types.Decision{
			Action:    types.ActionBuy,
			Pair:      inst.Pair,
			Volume:    inst.Volume,
			Price:     price,
			Rationale: "Initial position (SIMUL)",
		}

		b.execute(ctx, inst, decision)
	}
}

// applyCommands drains the instrument-set command queue. Changes never
// apply mid-cycle.
func (b *Loop) applyCommands() {
	for {
		select {
		case cmd := <-b.commands:
			switch cmd.kind {
			case commandAdd:
				if _, exists := b.histories[cmd.pair]; exists {
					b.log.Warn("pair already active", zap.String("pair", cmd.pair))

					continue
				}

				b.instruments = append(b.instruments, cmd.inst)
				b.histories[cmd.pair] = history.NewPriceHistory()
				b.log.Info("pair added", zap.String("pair", cmd.pair), zap.Float64("volume", cmd.inst.Volume))

			case commandRemove:
				if _, exists := b.histories[cmd.pair]; !exists {
					continue
				}

				delete(b.histories, cmd.pair)
				b.engine.Forget(cmd.pair)

				kept := b.instruments[:0]

				for _, inst := range b.instruments {
					if inst.Pair != cmd.pair {
						kept = append(kept, inst)
					}
				}

				b.instruments = kept
				b.log.Info("pair removed", zap.String("pair", cmd.pair))
			}
		default:
			return
		}
	}
}

// pairSnapshot assembles the published view for one pair.
func (b *Loop) pairSnapshot(inst types.Instrument, hist *history.PriceHistory, decision types.Decision) types.PairSnapshot {
	prices := hist.Snapshot()
	ind := indicator.Compute(prices)

	snap := types.PairSnapshot{
		Pair:         inst.Pair,
		Prices:       prices,
		LastPrice:    0,
		RSI:          ind.RSI,
		Bands:        ind.Bands,
		Trend:        ind.Trend,
		Fib:          ind.Fib,
		Levels:       optional.None[types.ChartLevels](),
		LastDecision: decision,
	}

	if last, ok := hist.Last(); ok {
		snap.LastPrice = last
		snap.Levels = optional.Some(types.ChartLevels{
			NextBuy:  last * (1 - b.cfg.Guards.ReentryThreshold),
			NextSell: last * (1 + b.cfg.Levels.TakeProfitFactor),
			StopLoss: last * (1 - b.cfg.Levels.StopLossFactor),
		})
	}

	return snap
}

const snapshotTradeTail = 20

// buildSnapshot assembles the cycle's aggregate snapshot.
func (b *Loop) buildSnapshot(pairs map[string]types.PairSnapshot) types.Snapshot {
	view := types.LedgerView{Cash: decimal.Zero, Holdings: map[string]decimal.Decimal{}}
	if b.ledger != nil {
		view = b.ledger.View()
	}

	return types.Snapshot{
		Time:   time.Now(),
		Cycle:  b.cycle,
		Mode:   b.exec.Mode(),
		Pairs:  pairs,
		Trades: b.trades.Tail(snapshotTradeTail),
		Ledger: view,
	}
}
