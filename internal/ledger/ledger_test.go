package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type LedgerTestSuite struct {
	suite.Suite
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func (suite *LedgerTestSuite) TestInitialState() {
	l := New(1000)
	suite.True(l.Cash().Equal(decimal.NewFromInt(1000)))
	suite.True(l.Holding("XETHZEUR").IsZero())
}

func (suite *LedgerTestSuite) TestBuyDebitsCash() {
	l := New(1000)

	suite.True(l.Buy("XETHZEUR", 0.2, 1000))
	suite.True(l.Cash().Equal(decimal.NewFromInt(800)))
	suite.True(l.Holding("XETHZEUR").Equal(decimal.NewFromFloat(0.2)))
}

func (suite *LedgerTestSuite) TestBuyRejectedWhenCashInsufficient() {
	l := New(100)

	suite.False(l.Buy("XETHZEUR", 1, 101))
	// No mutation on rejection.
	suite.True(l.Cash().Equal(decimal.NewFromInt(100)))
	suite.True(l.Holding("XETHZEUR").IsZero())
}

func (suite *LedgerTestSuite) TestSellRejectedWhenHoldingInsufficient() {
	l := New(1000)

	suite.False(l.Sell("XETHZEUR", 0.1, 1000))
	suite.True(l.Cash().Equal(decimal.NewFromInt(1000)))
}

func (suite *LedgerTestSuite) TestCashNeverNegative() {
	l := New(50)

	for i := 0; i < 10; i++ {
		l.Buy("SOLEUR", 0.2, 100)
		l.Sell("SOLEUR", 0.2, 10)
	}

	suite.False(l.Cash().IsNegative())
	suite.False(l.Holding("SOLEUR").IsNegative())
}

func (suite *LedgerTestSuite) TestRoundTripRestoresCashExactly() {
	l := New(1000)
	before := l.Cash()

	suite.True(l.Buy("XETHZEUR", 0.01, 1850.42))
	suite.True(l.Sell("XETHZEUR", 0.01, 1850.42))

	// No fees are modeled: the round trip is exact.
	suite.True(l.Cash().Equal(before))
	suite.True(l.Holding("XETHZEUR").IsZero())
}

func (suite *LedgerTestSuite) TestViewIsACopy() {
	l := New(1000)
	l.Buy("XETHZEUR", 0.5, 100)

	view := l.View()
	view.Holdings["XETHZEUR"] = decimal.NewFromInt(99)

	suite.True(l.Holding("XETHZEUR").Equal(decimal.NewFromFloat(0.5)))
}

func (suite *LedgerTestSuite) TestReset() {
	l := New(1000)
	l.Buy("XETHZEUR", 0.5, 100)

	l.Reset(1000)
	suite.True(l.Cash().Equal(decimal.NewFromInt(1000)))
	suite.True(l.Holding("XETHZEUR").IsZero())
}
