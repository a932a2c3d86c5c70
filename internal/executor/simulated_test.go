package executor

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/tradebotlab/krakenbot/internal/ledger"
	"github.com/tradebotlab/krakenbot/internal/types"
)

type SimulatedExecutorTestSuite struct {
	suite.Suite

	executor *Simulated
	inst     types.Instrument
}

func TestSimulatedExecutorSuite(t *testing.T) {
	suite.Run(t, new(SimulatedExecutorTestSuite))
}

func (suite *SimulatedExecutorTestSuite) SetupTest() {
	suite.executor = NewSimulated(ledger.New(1000))
	suite.inst = types.Instrument{Pair: "XETHZEUR", BaseAsset: "XETH", Volume: 0.5}
}

func (suite *SimulatedExecutorTestSuite) TestMode() {
	suite.Equal(types.ModeSimulated, suite.executor.Mode())
}

func (suite *SimulatedExecutorTestSuite) TestBuyExecutes() {
	result := suite.executor.Execute(context.Background(), suite.inst, types.Decision{
		Action: types.ActionBuy, Pair: suite.inst.Pair, Volume: 0.5, Price: 1000,
		Rationale: "test buy",
	})

	suite.Equal(types.StatusExecuted, result.Status)
	suite.True(result.Record.IsSome())

	record := result.Record.Unwrap()
	suite.Equal(types.SideBuy, record.Side)
	suite.Equal(types.ModeSimulated, record.Mode)
	suite.Equal("test buy", record.Rationale)
	suite.NotEmpty(record.ID)

	suite.True(suite.executor.Ledger().Cash().Equal(decimal.NewFromInt(500)))
}

func (suite *SimulatedExecutorTestSuite) TestBuyRejectedOnInsufficientCash() {
	result := suite.executor.Execute(context.Background(), suite.inst, types.Decision{
		Action: types.ActionBuy, Pair: suite.inst.Pair, Volume: 2, Price: 1000,
		Rationale: "",
	})

	suite.Equal(types.StatusRejected, result.Status)
	suite.True(result.Record.IsNone())
	suite.Contains(result.Reason, "insufficient cash")
	suite.True(suite.executor.Ledger().Cash().Equal(decimal.NewFromInt(1000)))
}

func (suite *SimulatedExecutorTestSuite) TestSellRejectedWithoutHoldings() {
	result := suite.executor.Execute(context.Background(), suite.inst, types.Decision{
		Action: types.ActionSell, Pair: suite.inst.Pair, Volume: 0.5, Price: 1000,
		Rationale: "",
	})

	suite.Equal(types.StatusRejected, result.Status)
}

func (suite *SimulatedExecutorTestSuite) TestBuyThenSellRoundTrip() {
	buy := suite.executor.Execute(context.Background(), suite.inst, types.Decision{
		Action: types.ActionBuy, Pair: suite.inst.Pair, Volume: 0.5, Price: 1850.42,
		Rationale: "",
	})
	suite.Equal(types.StatusExecuted, buy.Status)

	sell := suite.executor.Execute(context.Background(), suite.inst, types.Decision{
		Action: types.ActionSell, Pair: suite.inst.Pair, Volume: 0.5, Price: 1850.42,
		Rationale: "",
	})
	suite.Equal(types.StatusExecuted, sell.Status)

	suite.True(suite.executor.Ledger().Cash().Equal(decimal.NewFromInt(1000)))
	suite.True(suite.executor.Ledger().Holding(suite.inst.Pair).IsZero())
}

func (suite *SimulatedExecutorTestSuite) TestHoldIsRejected() {
	result := suite.executor.Execute(context.Background(), suite.inst, types.Hold(suite.inst.Pair, ""))
	suite.Equal(types.StatusRejected, result.Status)
}
