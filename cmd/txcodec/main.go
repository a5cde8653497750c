// Command txcodec builds, encodes and decodes unsigned Bitcoin transactions and
// NEAR actions.
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/multichain-tx/internal/chain"
	"github.com/goodnatureofminers/multichain-tx/internal/metrics"
	"github.com/goodnatureofminers/multichain-tx/internal/service"
)

type config struct {
	Network     chain.Network `long:"network" env:"TXCODEC_NETWORK" description:"network name used for addresses and metric labels" default:"mainnet"`
	Workers     int           `long:"workers" env:"TXCODEC_WORKERS" description:"parallel workers for batch encoding" default:"8"`
	MetricsAddr string        `long:"metrics-addr" env:"TXCODEC_METRICS_ADDR" description:"address for metrics server, disabled when empty"`

	NearEncode          nearEncodeCommand          `command:"near-encode" description:"encode a JSON array of NEAR actions to hex borsh, one per line"`
	NearDecode          nearDecodeCommand          `command:"near-decode" description:"decode hex borsh NEAR actions to a JSON array"`
	NearDelegatePayload nearDelegatePayloadCommand `command:"near-delegate-payload" description:"print the signing payload and hash of a JSON delegate action"`
	BTCBuild            btcBuildCommand            `command:"btc-build" description:"build an unsigned Bitcoin transaction from a JSON template"`
	BTCDecode           btcDecodeCommand           `command:"btc-decode" description:"decode a raw hex Bitcoin transaction to JSON"`
}

// app holds what every command needs. It is shared by pointer so commands see
// the parsed global options.
type app struct {
	ctx    context.Context
	cfg    *config
	logger *zap.Logger
	in     io.Reader
	out    io.Writer
}

func (a *app) nearCodec() *service.NearCodec {
	return service.NewNearCodec(a.cfg.Workers, metrics.NewCodec(chain.NEAR, a.cfg.Network), a.logger.Named("near"))
}

func (a *app) bitcoinCodec() (*service.BitcoinCodec, error) {
	return service.NewBitcoinCodec(a.cfg.Network, metrics.NewCodec(chain.BTC, a.cfg.Network), a.logger.Named("bitcoin"))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfg := config{}
	a := &app{ctx: ctx, cfg: &cfg, logger: logger, in: os.Stdin, out: os.Stdout}
	parser := newParser(a)

	if _, err := parser.Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("txcodec failed", zap.Error(err))
	}
}

func newParser(a *app) *flags.Parser {
	cfg := a.cfg
	cfg.NearEncode.app = a
	cfg.NearDecode.app = a
	cfg.NearDelegatePayload.app = a
	cfg.BTCBuild.app = a
	cfg.BTCDecode.app = a

	parser := flags.NewParser(cfg, flags.HelpFlag|flags.PassDoubleDash)
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		if command == nil {
			return nil
		}
		if cfg.MetricsAddr != "" {
			startMetricsServer(a.ctx, cfg.MetricsAddr, a.logger)
		}
		return command.Execute(args)
	}
	return parser
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
