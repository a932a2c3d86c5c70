// Package engine implements the buy/sell decision state machine and its
// risk guards (cooldown, re-entry avoidance, minimum profit).
package engine

import (
	"fmt"
	"time"

	"github.com/tradebotlab/krakenbot/internal/config"
	"github.com/tradebotlab/krakenbot/internal/indicator"
	"github.com/tradebotlab/krakenbot/internal/types"
)

// RSI thresholds for the oversold/overbought entry and exit conditions.
const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0
)

// Engine decides {Buy, Sell, Hold} per instrument per cycle from the latest
// price, the indicator set and the pair's trade memory. The engine itself is
// stateless logic; per-pair state lives in PairState values it owns.
// Not safe for concurrent use; the bot loop is its sole caller.
type Engine struct {
	guards config.GuardConfig
	states map[string]*PairState
	now    func() time.Time
}

// NewEngine creates a decision engine with the given guard parameters.
func NewEngine(guards config.GuardConfig) *Engine {
	return &Engine{
		guards: guards,
		states: make(map[string]*PairState),
		now:    time.Now,
	}
}

// State returns the trade memory for a pair, creating it on first use.
func (e *Engine) State(pair string) *PairState {
	state, ok := e.states[pair]
	if !ok {
		state = NewPairState()
		e.states[pair] = state
	}

	return state
}

// Forget drops the trade memory for a removed pair.
func (e *Engine) Forget(pair string) {
	delete(e.states, pair)
}

// Decide evaluates the buy path, then the sell path, for one instrument.
// The two are mutually exclusive by construction: RSI cannot be below 30
// and above 70 in the same cycle.
func (e *Engine) Decide(inst types.Instrument, price float64, ind indicator.Set) types.Decision {
	if ind.RSI.IsNone() || ind.Bands.IsNone() {
		return types.Hold(inst.Pair, "insufficient history for RSI/Bollinger")
	}

	rsi := ind.RSI.Unwrap()
	bands := ind.Bands.Unwrap()

	if rsi < rsiOversold && price < bands.Lower && ind.Trend > 0 {
		return e.decideBuy(inst, price, rsi, bands, ind)
	}

	if rsi > rsiOverbought && price > bands.Upper && ind.Trend < 0 {
		return e.decideSell(inst, price, rsi, bands, ind)
	}

	return types.Hold(inst.Pair, "no signal")
}

func (e *Engine) decideBuy(inst types.Instrument, price, rsi float64, bands types.Bands, ind indicator.Set) types.Decision {
	if ind.Fib.IsNone() {
		return types.Hold(inst.Pair, "no Fibonacci levels yet")
	}

	fib := ind.Fib.Unwrap()
	if price > fib.Level618 {
		return types.Hold(inst.Pair, fmt.Sprintf("price %.2f above 61.8%% level %.2f", price, fib.Level618))
	}

	state := e.State(inst.Pair)

	if state.LastTradeTime().IsSome() {
		if elapsed := e.now().Sub(state.LastTradeTime().Unwrap()); elapsed < e.guards.Cooldown() {
			return types.Hold(inst.Pair, fmt.Sprintf("cooldown active, %s since last trade", elapsed.Round(time.Second)))
		}
	}

	if state.LastBuyPrice().IsSome() {
		lastBuy := state.LastBuyPrice().Unwrap()
		if price >= lastBuy*(1-e.guards.ReentryThreshold) {
			return types.Hold(inst.Pair,
				fmt.Sprintf("re-entry blocked: price %.2f within %.1f%% of last buy %.2f",
					price, e.guards.ReentryThreshold*100, lastBuy))
		}
	}

	return types.Decision{
		Action: types.ActionBuy,
		Pair:   inst.Pair,
		Volume: inst.Volume,
		Price:  price,
		Rationale: fmt.Sprintf("Signal: RSI=%.2f, BB-Low=%.2f, Trend=%.2f, Fibo=%.2f",
			rsi, bands.Lower, ind.Trend, fib.Level618),
	}
}

func (e *Engine) decideSell(inst types.Instrument, price, rsi float64, bands types.Bands, ind indicator.Set) types.Decision {
	state := e.State(inst.Pair)

	if state.LastBuyPrice().IsNone() {
		return types.Hold(inst.Pair, "no prior buy to take profit against")
	}

	lastBuy := state.LastBuyPrice().Unwrap()

	gainAbs := (price - lastBuy) * inst.Volume
	gainPct := (price - lastBuy) / lastBuy * 100

	if gainAbs < e.guards.MinProfitAbsolute || gainPct < e.guards.MinProfitPercent {
		return types.Hold(inst.Pair,
			fmt.Sprintf("profit too small: %.2f abs / %.2f%%", gainAbs, gainPct))
	}

	return types.Decision{
		Action: types.ActionSell,
		Pair:   inst.Pair,
		Volume: inst.Volume,
		Price:  price,
		Rationale: fmt.Sprintf("Signal: RSI=%.2f, BB-High=%.2f, Trend=%.2f",
			rsi, bands.Upper, ind.Trend),
	}
}

// MarkExecuted applies the post-execution state transition for a confirmed
// trade: buys record time and price, sells record time and clear the last
// buy price. Both modes share this path so the guards never diverge.
func (e *Engine) MarkExecuted(decision types.Decision, at time.Time) {
	state := e.State(decision.Pair)

	switch decision.Action {
	case types.ActionBuy:
		state.MarkBuy(decision.Price, at)
	case types.ActionSell:
		state.MarkSell(at)
	case types.ActionHold:
	}
}
