package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/tradebotlab/krakenbot/internal/bot"
	"github.com/tradebotlab/krakenbot/internal/config"
	"github.com/tradebotlab/krakenbot/internal/engine"
	"github.com/tradebotlab/krakenbot/internal/exchange/kraken"
	"github.com/tradebotlab/krakenbot/internal/executor"
	"github.com/tradebotlab/krakenbot/internal/ledger"
	"github.com/tradebotlab/krakenbot/internal/logger"
	"github.com/tradebotlab/krakenbot/internal/server"
	"github.com/tradebotlab/krakenbot/internal/tradelog"
	"github.com/tradebotlab/krakenbot/internal/types"
)

// runAction wires the bot's dependency graph and runs the trading loop
// until the process receives an interrupt.
func runAction(ctx context.Context, cmd *cli.Command) error {
	appLogger, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	if cmd.Bool("simulate") {
		cfg.Simulate = true
	}

	mode := cfg.Mode()
	appLogger.Info("starting bot",
		zap.String("mode", string(mode)),
		zap.Int("instruments", len(cfg.Instruments)),
		zap.Duration("cycle", cfg.CycleInterval()))

	client := kraken.NewClient(cfg.ExchangeURL, cfg.Credentials.APIKey, cfg.Credentials.APISecret)

	if mode == types.ModeReal {
		verifyInstruments(ctx, client, cfg, appLogger)
	}

	var trades *tradelog.TradeLog

	if cfg.TradeLogPath != "" {
		writer, err := tradelog.NewDuckDBWriter(cfg.TradeLogPath)
		if err != nil {
			return err
		}

		trades = tradelog.New(writer)
	} else {
		trades = tradelog.New(nil)
	}
	defer trades.Close()

	var (
		exec executor.Executor
		wall *ledger.Ledger
	)

	if mode == types.ModeSimulated {
		wall = ledger.New(cfg.InitialCash)
		exec = executor.NewSimulated(wall)
	} else {
		exec = executor.NewLive(client, executor.NewReserveGuard(cfg.ProtectedAssets), appLogger)
	}

	loop := bot.NewLoop(cfg, client, exec, engine.NewEngine(cfg.Guards), wall, trades, appLogger)

	if cfg.ServerListen != "" {
		api := server.New(loop, appLogger)
		if err := api.Start(cfg.ServerListen); err != nil {
			return err
		}

		defer func() {
			if err := api.Stop(); err != nil {
				appLogger.Warn("failed to stop api server", zap.Error(err))
			}
		}()
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = loop.Run(runCtx)

	appLogger.Info("bot stopped")

	return err
}

// verifyInstruments checks the configured pairs against the exchange's
// listed asset pairs. Unknown pairs are logged, not fatal: the loop skips
// them naturally when the ticker fetch fails.
func verifyInstruments(ctx context.Context, client *kraken.Client, cfg *config.Config, appLogger *logger.Logger) {
	known, err := client.AssetPairs(ctx)
	if err != nil {
		appLogger.Warn("could not verify instruments against exchange", zap.Error(err))

		return
	}

	listed := make(map[string]struct{}, len(known))
	for _, pair := range known {
		listed[pair] = struct{}{}
	}

	for _, inst := range cfg.Instruments {
		if _, ok := listed[inst.Pair]; !ok {
			appLogger.Warn("configured pair is not listed on the exchange", zap.String("pair", inst.Pair))
		}
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "krakenbot",
		Usage: "Run the Kraken trading bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the YAML configuration file",
				Value:    "config.yaml",
				Required: false,
			},
			&cli.BoolFlag{
				Name:     "simulate",
				Aliases:  []string{"s"},
				Usage:    "Force simulation mode regardless of configured credentials",
				Value:    false,
				Required: false,
			},
		},
		Action: runAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
