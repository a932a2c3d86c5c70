package history

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type PriceHistoryTestSuite struct {
	suite.Suite
}

func TestPriceHistorySuite(t *testing.T) {
	suite.Run(t, new(PriceHistoryTestSuite))
}

func (suite *PriceHistoryTestSuite) TestAppendAndLen() {
	h := NewPriceHistory()
	suite.Equal(0, h.Len())

	h.Append(100.0)
	h.Append(101.0)
	suite.Equal(2, h.Len())
}

func (suite *PriceHistoryTestSuite) TestNeverExceedsCapacity() {
	h := NewPriceHistory()
	for i := 0; i < 500; i++ {
		h.Append(float64(i))
	}
	suite.Equal(DefaultCapacity, h.Len())
}

func (suite *PriceHistoryTestSuite) TestOldestEvictedFirst() {
	h := NewPriceHistoryWithCapacity(3)
	h.Append(1)
	h.Append(2)
	h.Append(3)
	h.Append(4)

	suite.Equal([]float64{2, 3, 4}, h.Snapshot())

	h.Append(5)
	suite.Equal([]float64{3, 4, 5}, h.Snapshot())
}

func (suite *PriceHistoryTestSuite) TestLast() {
	h := NewPriceHistory()

	_, ok := h.Last()
	suite.False(ok)

	h.Append(42.5)
	h.Append(43.0)

	last, ok := h.Last()
	suite.True(ok)
	suite.Equal(43.0, last)
}

func (suite *PriceHistoryTestSuite) TestWindowShorterThanRequested() {
	h := NewPriceHistory()
	h.Append(1)
	h.Append(2)

	suite.Equal([]float64{1, 2}, h.Window(10))
}

func (suite *PriceHistoryTestSuite) TestWindowPreservesOrder() {
	h := NewPriceHistory()
	for i := 1; i <= 5; i++ {
		h.Append(float64(i))
	}

	suite.Equal([]float64{3, 4, 5}, h.Window(3))
	suite.Equal([]float64{}, h.Window(0))
}

func (suite *PriceHistoryTestSuite) TestSnapshotIsACopy() {
	h := NewPriceHistory()
	h.Append(1)
	h.Append(2)

	snap := h.Snapshot()
	snap[0] = 99

	suite.Equal([]float64{1, 2}, h.Snapshot())
}
