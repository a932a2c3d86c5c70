package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradebotlab/krakenbot/internal/exchange/kraken"
	"github.com/tradebotlab/krakenbot/internal/logger"
	"github.com/tradebotlab/krakenbot/internal/types"
)

// ExchangeClient is the slice of the Kraken client the live executor needs.
type ExchangeClient interface {
	AddOrder(ctx context.Context, order kraken.OrderRequest) error
	Balance(ctx context.Context) (map[string]float64, error)
}

// Live submits signed limit orders to the exchange. Every sell passes the
// reserve guard before the order request is even constructed.
type Live struct {
	client  ExchangeClient
	reserve *ReserveGuard
	log     *logger.Logger
	now     func() time.Time
}

// NewLive creates a live executor.
func NewLive(client ExchangeClient, reserve *ReserveGuard, log *logger.Logger) *Live {
	return &Live{
		client:  client,
		reserve: reserve,
		log:     log,
		now:     time.Now,
	}
}

// Mode implements Executor.
func (l *Live) Mode() types.Mode {
	return types.ModeReal
}

// Execute implements Executor. Transport errors, non-2xx statuses and
// exchange error arrays all surface as Failed; reserve-guard breaches are
// Rejected. An order whose response is lost is never retried automatically.
func (l *Live) Execute(ctx context.Context, inst types.Instrument, decision types.Decision) types.ExecutionResult {
	var side types.Side

	switch decision.Action {
	case types.ActionBuy:
		side = types.SideBuy
	case types.ActionSell:
		side = types.SideSell

		if result, ok := l.checkReserve(ctx, inst, decision); !ok {
			return result
		}
	default:
		return types.Rejected(fmt.Sprintf("nothing to execute for action %s", decision.Action))
	}

	order := kraken.OrderRequest{
		Pair:   inst.Pair,
		Side:   side,
		Volume: decision.Volume,
		Price:  decision.Price,
	}

	if err := l.client.AddOrder(ctx, order); err != nil {
		l.log.Warn("order submission failed",
			zap.String("pair", inst.Pair),
			zap.String("side", string(side)),
			zap.Error(err))

		return types.Failed(err.Error())
	}

	return types.Executed(types.TradeRecord{
		ID:        uuid.NewString(),
		Mode:      types.ModeReal,
		Side:      side,
		Pair:      inst.Pair,
		Volume:    decision.Volume,
		Price:     decision.Price,
		Timestamp: l.now(),
		Rationale: decision.Rationale,
	})
}

// checkReserve enforces the protected-asset floor on a sell. The balance
// query only happens for assets with a configured reserve entry.
func (l *Live) checkReserve(ctx context.Context, inst types.Instrument, decision types.Decision) (types.ExecutionResult, bool) {
	if !l.reserve.Protects(inst.BaseAsset) {
		return types.ExecutionResult{}, true
	}

	balances, err := l.client.Balance(ctx)
	if err != nil {
		return types.Failed(fmt.Sprintf("reserve check: %v", err)), false
	}

	if reason := l.reserve.CheckSell(inst.BaseAsset, decision.Volume, balances[inst.BaseAsset]); reason != "" {
		l.log.Info("sell blocked by reserve guard",
			zap.String("pair", inst.Pair),
			zap.String("asset", inst.BaseAsset),
			zap.String("reason", reason))

		return types.Rejected(reason), false
	}

	return types.ExecutionResult{}, true
}
