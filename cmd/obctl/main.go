// Command obctl drives a prediction market order book from the shell.
//
//	obctl [-config obctl.toml] [-wait] <command> [flags]
//
// Results are printed as JSON on stdout; logs go to stderr.
package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/trufnetwork/kwil-db/core/crypto"
	"github.com/trufnetwork/kwil-db/core/crypto/auth"
	kwiltypes "github.com/trufnetwork/kwil-db/core/types"
	"go.uber.org/zap"

	"github.com/trufnetwork/orderbook-go/core/cache"
	"github.com/trufnetwork/orderbook-go/core/config"
	"github.com/trufnetwork/orderbook-go/core/logging"
	"github.com/trufnetwork/orderbook-go/core/tnclient"
	"github.com/trufnetwork/orderbook-go/core/types"
)

type app struct {
	cfg      *config.Config
	client   *tnclient.Client
	book     types.IOrderBook
	readOnly bool
	wait     bool
	log      *zap.Logger
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	wait := flag.Bool("wait", false, "wait for transaction confirmation")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.SetLogger(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.ListenAddr != "" {
		go serveMetrics(cfg.Metrics.ListenAddr, logger)
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	a.wait = *wait

	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		usage()
		os.Exit(2)
	}
	if err := cmd.run(ctx, a, flag.Args()[1:]); err != nil {
		logger.Error("command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, log: logger}

	opts := []tnclient.Option{}
	if cfg.Node.PrivateKey != "" {
		opts = append(opts, tnclient.WithPrivateKey(cfg.Node.PrivateKey))
	} else {
		// reads still need a signer for the gateway handshake
		signer, err := ephemeralSigner()
		if err != nil {
			return nil, err
		}
		opts = append(opts, tnclient.WithSigner(signer))
		a.readOnly = true
		logger.Info("no private key configured, running read-only")
	}

	if cfg.Redis.Enabled {
		rdb, err := cache.Connect(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Warn("market cache disabled", zap.Error(err))
		} else {
			opts = append(opts, tnclient.WithMarketCache(cache.NewMarketCache(rdb,
				cache.WithPrefix(cfg.Redis.Prefix),
				cache.WithUnsettledTTL(cfg.Redis.UnsettledTTL.Duration),
			)))
		}
	}

	client, err := tnclient.NewClient(ctx, cfg.Node.Endpoint, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create client")
	}
	book, err := client.LoadOrderBook()
	if err != nil {
		return nil, errors.Wrap(err, "load order book")
	}
	a.client = client
	a.book = book
	return a, nil
}

func ephemeralSigner() (auth.Signer, error) {
	privKey, _, err := crypto.GenerateSecp256k1Key(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "generate key")
	}
	secp256k1Key, ok := privKey.(*crypto.Secp256k1PrivateKey)
	if !ok {
		return nil, errors.Errorf("unexpected key type %T", privKey)
	}
	return &auth.EthPersonalSigner{Key: *secp256k1Key}, nil
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Info("serving metrics", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server failed", zap.Error(err))
	}
}

// submitted prints the hash and, with -wait, the confirmed height.
func (a *app) submitted(ctx context.Context, action string, hash kwiltypes.Hash, extra map[string]any) error {
	out := map[string]any{"action": action, "tx_hash": hash.String()}
	for k, v := range extra {
		out[k] = v
	}
	if a.wait {
		resp, err := a.client.WaitForConfirmation(ctx, hash,
			a.cfg.Node.PollInterval.Duration, a.cfg.Node.ConfirmationTimeout.Duration)
		if err != nil {
			return err
		}
		out["height"] = resp.Height
	}
	return printJSON(out)
}

func (a *app) requireSigner() error {
	if a.readOnly {
		return errors.New("this command needs a private key (set node.private_key or TN_PRIVATE_KEY)")
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: obctl [-config file] [-wait] <command> [flags]\n\ncommands:\n")
	for _, name := range commandOrder {
		fmt.Fprintf(os.Stderr, "  %-12s %s\n", name, commands[name].summary)
	}
}
