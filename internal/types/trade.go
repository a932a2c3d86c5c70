package types

import (
	"time"

	"github.com/moznion/go-optional"
)

type Side string

type Mode string

type Action string

type ExecutionStatus string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

const (
	// ModeSimulated trades against the in-process ledger.
	ModeSimulated Mode = "SIMUL"
	// ModeReal submits signed orders to the exchange.
	ModeReal Mode = "REAL"
)

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

const (
	// StatusExecuted means the trade was confirmed (ledger mutated or order accepted).
	StatusExecuted ExecutionStatus = "EXECUTED"
	// StatusRejected means a guard turned the trade down; a normal, expected outcome.
	StatusRejected ExecutionStatus = "REJECTED"
	// StatusFailed means transport, authentication or exchange-side failure.
	StatusFailed ExecutionStatus = "FAILED"
)

// Decision is the outcome of one decision-engine evaluation for one pair.
type Decision struct {
	Action Action `json:"action"`
	Pair   string `json:"pair"`
	// Volume and Price are meaningful only when Action is not ActionHold.
	Volume    float64 `json:"volume"`
	Price     float64 `json:"price"`
	Rationale string  `json:"rationale"`
}

// Hold returns a no-action decision for the given pair.
func Hold(pair, rationale string) Decision {
	return Decision{
		Action:    ActionHold,
		Pair:      pair,
		Volume:    0,
		Price:     0,
		Rationale: rationale,
	}
}

// TradeRecord is the immutable fact of one confirmed execution.
// Records are appended to the trade log and never mutated or removed.
type TradeRecord struct {
	// ID uniquely identifies the execution; the trade log uses it to
	// guarantee at-most-once emission per confirmed trade.
	ID        string    `json:"id"`
	Mode      Mode      `json:"mode"`
	Side      Side      `json:"side"`
	Pair      string    `json:"pair"`
	Volume    float64   `json:"volume"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
	Rationale string    `json:"rationale"`
}

// ExecutionResult reports the outcome of one executor call.
type ExecutionResult struct {
	Status ExecutionStatus `json:"status"`
	// Record is present only when Status is StatusExecuted.
	Record optional.Option[TradeRecord] `json:"record"`
	// Reason explains rejections and failures.
	Reason string `json:"reason"`
}

// Executed builds an ExecutionResult for a confirmed trade.
func Executed(record TradeRecord) ExecutionResult {
	return ExecutionResult{
		Status: StatusExecuted,
		Record: optional.Some(record),
		Reason: "",
	}
}

// Rejected builds an ExecutionResult for a guard rejection.
func Rejected(reason string) ExecutionResult {
	return ExecutionResult{
		Status: StatusRejected,
		Record: optional.None[TradeRecord](),
		Reason: reason,
	}
}

// Failed builds an ExecutionResult for a transport or exchange failure.
func Failed(reason string) ExecutionResult {
	return ExecutionResult{
		Status: StatusFailed,
		Record: optional.None[TradeRecord](),
		Reason: reason,
	}
}
