package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/tradebotlab/krakenbot/internal/config"
	"github.com/tradebotlab/krakenbot/internal/exchange/kraken"
	"github.com/tradebotlab/krakenbot/internal/logger"
	"github.com/tradebotlab/krakenbot/internal/types"
	"github.com/tradebotlab/krakenbot/pkg/errors"
)

// fakeExchange records orders and serves canned balances.
type fakeExchange struct {
	orders     []kraken.OrderRequest
	orderErr   error
	balances   map[string]float64
	balanceErr error
}

func (f *fakeExchange) AddOrder(_ context.Context, order kraken.OrderRequest) error {
	if f.orderErr != nil {
		return f.orderErr
	}

	f.orders = append(f.orders, order)

	return nil
}

func (f *fakeExchange) Balance(_ context.Context) (map[string]float64, error) {
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}

	return f.balances, nil
}

type LiveExecutorTestSuite struct {
	suite.Suite

	exchange *fakeExchange
	inst     types.Instrument
}

func TestLiveExecutorSuite(t *testing.T) {
	suite.Run(t, new(LiveExecutorTestSuite))
}

func (suite *LiveExecutorTestSuite) SetupTest() {
	suite.exchange = &fakeExchange{
		orders:     nil,
		orderErr:   nil,
		balances:   map[string]float64{"XETH": 2.0},
		balanceErr: nil,
	}
	suite.inst = types.Instrument{Pair: "XETHZEUR", BaseAsset: "XETH", Volume: 0.5}
}

func (suite *LiveExecutorTestSuite) newLive(assets ...config.ProtectedAsset) *Live {
	return NewLive(suite.exchange, NewReserveGuard(assets), logger.NewNopLogger())
}

func (suite *LiveExecutorTestSuite) TestBuySubmitsOrder() {
	live := suite.newLive()

	result := live.Execute(context.Background(), suite.inst, types.Decision{
		Action: types.ActionBuy, Pair: suite.inst.Pair, Volume: 0.5, Price: 1850.5,
		Rationale: "signal",
	})

	suite.Equal(types.StatusExecuted, result.Status)
	suite.Require().Len(suite.exchange.orders, 1)
	suite.Equal(types.SideBuy, suite.exchange.orders[0].Side)
	suite.Equal("XETHZEUR", suite.exchange.orders[0].Pair)

	record := result.Record.Unwrap()
	suite.Equal(types.ModeReal, record.Mode)
	suite.Equal("signal", record.Rationale)
}

func (suite *LiveExecutorTestSuite) TestOrderFailureIsFailed() {
	suite.exchange.orderErr = errors.New(errors.ErrCodeExchangeRejected, "order rejected: EAPI:Invalid signature")
	live := suite.newLive()

	result := live.Execute(context.Background(), suite.inst, types.Decision{
		Action: types.ActionBuy, Pair: suite.inst.Pair, Volume: 0.5, Price: 1850.5,
		Rationale: "",
	})

	suite.Equal(types.StatusFailed, result.Status)
	suite.Contains(result.Reason, "Invalid signature")
}

func (suite *LiveExecutorTestSuite) TestSellWithoutReserveEntrySkipsBalanceQuery() {
	live := suite.newLive()
	suite.exchange.balanceErr = errors.New(errors.ErrCodeBalanceQueryFailed, "should not be called")

	result := live.Execute(context.Background(), suite.inst, types.Decision{
		Action: types.ActionSell, Pair: suite.inst.Pair, Volume: 0.5, Price: 2000,
		Rationale: "",
	})

	suite.Equal(types.StatusExecuted, result.Status)
}

func (suite *LiveExecutorTestSuite) TestSellBlockedWithoutOptIn() {
	live := suite.newLive(config.ProtectedAsset{Asset: "XETH", Floor: 0.5, AllowSell: false})

	result := live.Execute(context.Background(), suite.inst, types.Decision{
		Action: types.ActionSell, Pair: suite.inst.Pair, Volume: 0.5, Price: 2000,
		Rationale: "",
	})

	suite.Equal(types.StatusRejected, result.Status)
	suite.Contains(result.Reason, "not flagged sell-permitted")
	suite.Empty(suite.exchange.orders)
}

func (suite *LiveExecutorTestSuite) TestSellBlockedByFloor() {
	live := suite.newLive(config.ProtectedAsset{Asset: "XETH", Floor: 1.8, AllowSell: true})

	// Balance 2.0 - volume 0.5 = 1.5, below the 1.8 floor.
	result := live.Execute(context.Background(), suite.inst, types.Decision{
		Action: types.ActionSell, Pair: suite.inst.Pair, Volume: 0.5, Price: 2000,
		Rationale: "",
	})

	suite.Equal(types.StatusRejected, result.Status)
	suite.Contains(result.Reason, "reserve floor")
	suite.Empty(suite.exchange.orders)
}

func (suite *LiveExecutorTestSuite) TestSellAllowedAboveFloor() {
	live := suite.newLive(config.ProtectedAsset{Asset: "XETH", Floor: 1.0, AllowSell: true})

	result := live.Execute(context.Background(), suite.inst, types.Decision{
		Action: types.ActionSell, Pair: suite.inst.Pair, Volume: 0.5, Price: 2000,
		Rationale: "",
	})

	suite.Equal(types.StatusExecuted, result.Status)
	suite.Require().Len(suite.exchange.orders, 1)
	suite.Equal(types.SideSell, suite.exchange.orders[0].Side)
}

func (suite *LiveExecutorTestSuite) TestBalanceFailureIsFailed() {
	live := suite.newLive(config.ProtectedAsset{Asset: "XETH", Floor: 1.0, AllowSell: true})
	suite.exchange.balanceErr = errors.New(errors.ErrCodeBalanceQueryFailed, "balance error: EAPI:Invalid key")

	result := live.Execute(context.Background(), suite.inst, types.Decision{
		Action: types.ActionSell, Pair: suite.inst.Pair, Volume: 0.5, Price: 2000,
		Rationale: "",
	})

	suite.Equal(types.StatusFailed, result.Status)
	suite.Empty(suite.exchange.orders)
}
