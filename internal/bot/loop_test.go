package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/tradebotlab/krakenbot/internal/config"
	"github.com/tradebotlab/krakenbot/internal/engine"
	"github.com/tradebotlab/krakenbot/internal/executor"
	"github.com/tradebotlab/krakenbot/internal/ledger"
	"github.com/tradebotlab/krakenbot/internal/logger"
	"github.com/tradebotlab/krakenbot/internal/tradelog"
	"github.com/tradebotlab/krakenbot/internal/types"
	"github.com/tradebotlab/krakenbot/pkg/errors"
)

// fakeSource serves canned prices per pair and counts fetches.
type fakeSource struct {
	mu     sync.Mutex
	prices map[string]float64
	fail   map[string]bool
	calls  map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		mu:     sync.Mutex{},
		prices: make(map[string]float64),
		fail:   make(map[string]bool),
		calls:  make(map[string]int),
	}
}

func (f *fakeSource) Ticker(_ context.Context, pair string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[pair]++

	if f.fail[pair] {
		return 0, errors.New(errors.ErrCodeTickerFetchFailed, "fetch failed")
	}

	price, ok := f.prices[pair]
	if !ok {
		return 0, errors.New(errors.ErrCodeTickerFetchFailed, "unknown pair")
	}

	return price, nil
}

func (f *fakeSource) set(pair string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prices[pair] = price
}

func (f *fakeSource) setFail(pair string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fail[pair] = fail
}

func (f *fakeSource) count(pair string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[pair]
}

type LoopTestSuite struct {
	suite.Suite
	cfg    *config.Config
	source *fakeSource
	ledger *ledger.Ledger
	trades *tradelog.TradeLog
	loop   *Loop
}

func TestLoopSuite(t *testing.T) {
	suite.Run(t, new(LoopTestSuite))
}

func (suite *LoopTestSuite) SetupTest() {
	suite.cfg = config.DefaultConfig()
	suite.cfg.CycleSeconds = 1
	suite.cfg.Instruments = []types.Instrument{
		{Pair: "XETHZEUR", BaseAsset: "XETH", Volume: 0.01},
	}

	suite.source = newFakeSource()
	suite.source.set("XETHZEUR", 1850)

	suite.ledger = ledger.New(suite.cfg.InitialCash)
	suite.trades = tradelog.New(nil)

	suite.loop = NewLoop(
		suite.cfg,
		suite.source,
		executor.NewSimulated(suite.ledger),
		engine.NewEngine(suite.cfg.Guards),
		suite.ledger,
		suite.trades,
		logger.NewNopLogger(),
	)
}

func (suite *LoopTestSuite) TestCyclePublishesSnapshot() {
	suite.loop.runCycle(context.Background())

	snap := suite.loop.Snapshot()
	suite.Equal(uint64(1), snap.Cycle)
	suite.Equal(types.ModeSimulated, snap.Mode)

	pair, ok := snap.Pairs["XETHZEUR"]
	suite.True(ok)
	suite.Equal([]float64{1850}, pair.Prices)
	suite.Equal(1850.0, pair.LastPrice)
	suite.Equal(types.ActionHold, pair.LastDecision.Action)

	// One sample is not enough for RSI or the bands.
	suite.True(pair.RSI.IsNone())
	suite.True(pair.Bands.IsNone())

	suite.True(pair.Levels.IsSome())
	levels := pair.Levels.Unwrap()
	suite.InDelta(1850*(1-suite.cfg.Guards.ReentryThreshold), levels.NextBuy, 1e-9)
	suite.InDelta(1850*(1+suite.cfg.Levels.TakeProfitFactor), levels.NextSell, 1e-9)
	suite.InDelta(1850*(1-suite.cfg.Levels.StopLossFactor), levels.StopLoss, 1e-9)
}

func (suite *LoopTestSuite) TestHistoryAccumulatesAcrossCycles() {
	for i, price := range []float64{1850, 1851, 1849} {
		suite.source.set("XETHZEUR", price)
		suite.loop.runCycle(context.Background())
		suite.Equal(uint64(i+1), suite.loop.Snapshot().Cycle)
	}

	suite.Equal([]float64{1850, 1851, 1849}, suite.loop.Snapshot().Pairs["XETHZEUR"].Prices)
}

func (suite *LoopTestSuite) TestFetchFailureSkipsPairForCycle() {
	suite.loop.runCycle(context.Background())

	suite.source.setFail("XETHZEUR", true)
	suite.loop.runCycle(context.Background())

	snap := suite.loop.Snapshot()
	suite.Equal(uint64(2), snap.Cycle)

	pair := snap.Pairs["XETHZEUR"]
	suite.Equal([]float64{1850}, pair.Prices, "no sample appended for the failed fetch")
	suite.Equal("price unavailable", pair.LastDecision.Rationale)

	// Recovery on the next cycle.
	suite.source.setFail("XETHZEUR", false)
	suite.loop.runCycle(context.Background())
	suite.Equal([]float64{1850, 1850}, suite.loop.Snapshot().Pairs["XETHZEUR"].Prices)
}

func (suite *LoopTestSuite) TestAddInstrumentAppliesAtCycleBoundary() {
	suite.source.set("SOLEUR", 140)

	suite.NoError(suite.loop.AddInstrument(types.Instrument{Pair: "SOLEUR", BaseAsset: "SOL", Volume: 0.5}))
	suite.Zero(suite.source.count("SOLEUR"), "queued command must not take effect before a cycle")

	suite.loop.runCycle(context.Background())

	snap := suite.loop.Snapshot()
	suite.Len(snap.Pairs, 2)
	suite.Contains(snap.Pairs, "SOLEUR")
	suite.Equal(1, suite.source.count("SOLEUR"))
}

func (suite *LoopTestSuite) TestAddDuplicatePairIsIgnored() {
	suite.NoError(suite.loop.AddInstrument(types.Instrument{Pair: "XETHZEUR", BaseAsset: "XETH", Volume: 0.5}))
	suite.loop.runCycle(context.Background())

	suite.Len(suite.loop.Snapshot().Pairs, 1)
	suite.Len(suite.loop.instruments, 1)
}

func (suite *LoopTestSuite) TestAddInvalidInstrumentFails() {
	suite.Error(suite.loop.AddInstrument(types.Instrument{Pair: "", BaseAsset: "XETH", Volume: 0.01}))
}

func (suite *LoopTestSuite) TestRemoveInstrument() {
	suite.loop.runCycle(context.Background())

	suite.NoError(suite.loop.RemoveInstrument("XETHZEUR"))
	suite.loop.runCycle(context.Background())

	snap := suite.loop.Snapshot()
	suite.Empty(snap.Pairs)
	suite.Equal(1, suite.source.count("XETHZEUR"), "removed pair is not fetched")
}

func (suite *LoopTestSuite) TestRemoveUnknownPairIsIgnored() {
	suite.NoError(suite.loop.RemoveInstrument("NOSUCHPAIR"))
	suite.loop.runCycle(context.Background())
	suite.Len(suite.loop.Snapshot().Pairs, 1)
}

func (suite *LoopTestSuite) TestSeedInitialPositions() {
	suite.cfg.SeedInitialPositions = true

	suite.loop.seedInitialPositions(context.Background())

	view := suite.ledger.View()
	suite.True(view.Holdings["XETHZEUR"].Equal(decimal.NewFromFloat(0.01)))
	suite.True(view.Cash.LessThan(decimal.NewFromFloat(suite.cfg.InitialCash)))

	suite.Equal(1, suite.trades.Len())
	record := suite.trades.Tail(1)[0]
	suite.Equal(types.SideBuy, record.Side)
	suite.Equal("Initial position (SIMUL)", record.Rationale)
}

func (suite *LoopTestSuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})

	go func() {
		defer close(done)

		_ = suite.loop.Run(ctx)
	}()

	// The first cycle runs immediately; wait for its snapshot.
	select {
	case snap := <-suite.loop.Updates():
		suite.Equal(uint64(1), snap.Cycle)
	case <-time.After(2 * time.Second):
		suite.FailNow("no snapshot published")
	}

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		suite.FailNow("loop did not stop after cancellation")
	}
}

func (suite *LoopTestSuite) TestSnapshotIsACopy() {
	suite.loop.runCycle(context.Background())

	snap := suite.loop.Snapshot()
	snap.Pairs["XETHZEUR"].Prices[0] = -1
	delete(snap.Pairs, "XETHZEUR")

	fresh := suite.loop.Snapshot()
	suite.Equal([]float64{1850}, fresh.Pairs["XETHZEUR"].Prices)
}

func (suite *LoopTestSuite) TestUpdatesKeepsNewestSnapshot() {
	suite.loop.runCycle(context.Background())
	suite.loop.runCycle(context.Background())

	// The buffered channel holds only the latest snapshot.
	snap := <-suite.loop.Updates()
	suite.Equal(uint64(2), snap.Cycle)
}
