package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"poolquote/pkg"
	"poolquote/pkg/config"
	"poolquote/pkg/jupiter"
	"poolquote/pkg/logging"
	"poolquote/pkg/protocol"
	"poolquote/pkg/sol"
	"poolquote/pkg/subscription"
)

var (
	rpcEndpoints = flag.String("rpc", "", "Comma-separated Solana RPC endpoints (reads RPC_ENDPOINTS if not specified)")
	fixtures     = flag.String("fixtures", "", "Quote from a JSON account fixture file instead of RPC")
	rateLimit    = flag.Int("ratelimit", 0, "RPC requests per second per endpoint (default: RPC_RATE_LIMIT)")
	jsonOutput   = flag.Bool("json", false, "Output as JSON")
	watch        = flag.Bool("watch", false, "Requote every time the pool account changes")
	logLevel     = flag.String("log-level", "", "Log level (default: LOG_LEVEL or info)")
	interactive  = flag.Bool("i", false, "Prompt for every input")
)

func main() {
	if err := config.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load .env file: %v\n", err)
	}
	flag.Usage = usage
	flag.Parse()

	cfg := config.FromEnv()
	if *rpcEndpoints != "" {
		cfg.RPCEndpoints = config.SplitEndpoints(*rpcEndpoints)
	}
	if *rateLimit > 0 {
		cfg.RPCRateLimit = *rateLimit
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	var args quoteArgs
	if *interactive || flag.NArg() == 0 {
		args, err = argsFromPrompt(os.Stdin, os.Stdout)
		if err != nil {
			logger.WithError(err).Fatal("failed to read input")
		}
	} else {
		args = argsFromPositional(flag.Args())
	}
	req, err := args.request()
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := connect(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to set up account source")
	}

	vendor := protocol.NewJupiterVendor(jupiter.NewClient(cfg.JupiterAPIURL, cfg.JupiterAPIKey))
	registry, err := protocol.NewDefaultRegistry(vendor, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to build protocol registry")
	}

	if !*watch {
		if err := quoteOnce(ctx, cfg, registry, conn, req, os.Stdout); err != nil {
			printError(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := watchPool(ctx, cfg, logger, registry, conn, req); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("watch stopped")
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Usage: quote [flags] <pool> [inputMint] [amount] [slippage%] [reserveA] [reserveB]")
	fmt.Fprintln(out, "\nWith no positional arguments every input is prompted for.")
	fmt.Fprintln(out, "\nFlags:")
	flag.PrintDefaults()
	fmt.Fprintln(out, "\nExample:")
	fmt.Fprintf(out, "  quote %s %s %s %s\n", defaultPool, defaultInputMint, defaultAmount, defaultSlippage)
}

func connect(ctx context.Context, cfg *config.Config) (pkg.Connection, error) {
	if *fixtures != "" {
		fc, err := sol.LoadFixtures(*fixtures)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
	return sol.Dial(ctx, cfg.RPCEndpoints, cfg.RPCRateLimit)
}

func quoteOnce(ctx context.Context, cfg *config.Config, registry *protocol.Registry, conn pkg.Connection, req pkg.QuoteRequest, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.QuoteTimeout)
	defer cancel()

	res, err := registry.Quote(ctx, conn, req)
	if err != nil {
		return err
	}
	printQuote(out, req, res)
	return nil
}

func watchPool(ctx context.Context, cfg *config.Config, logger *logrus.Logger, registry *protocol.Registry, conn pkg.Connection, req pkg.QuoteRequest) error {
	if err := quoteOnce(ctx, cfg, registry, conn, req, os.Stdout); err != nil {
		printError(os.Stderr, err)
	}

	watcher, err := subscription.NewWatcher(ctx, cfg.WebSocketURL(), logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	return watcher.Watch(ctx, req.PoolAddress, func(u subscription.Update) {
		logger.WithFields(logrus.Fields{"slot": u.Slot, "size": u.Size}).Debug("pool changed, requoting")
		if err := quoteOnce(ctx, cfg, registry, conn, req, os.Stdout); err != nil {
			printError(os.Stderr, err)
		}
	})
}

func printQuote(out io.Writer, req pkg.QuoteRequest, res *pkg.QuoteResponse) {
	if *jsonOutput {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error: failed to marshal JSON:", err)
			return
		}
		fmt.Fprintln(out, string(data))
		return
	}
	fmt.Fprintf(out, "\n=== Quote Results ===\n")
	fmt.Fprintf(out, "Protocol: %s\n", res.Protocol)
	fmt.Fprintf(out, "Pool: %s\n", req.PoolAddress)
	fmt.Fprintf(out, "Input: %s %s\n", req.InputAmount, req.InputMint)
	fmt.Fprintf(out, "Output Mint: %s\n", res.OutputMint)
	fmt.Fprintf(out, "Estimated Output: %s\n", res.EstimatedOutputAmount)
	fmt.Fprintf(out, "Minimum Output (with %d%% slippage): %s\n", req.SlippagePercent, res.MinOutputAmount)
	fmt.Fprintf(out, "Fee Paid: %s\n", res.FeePaid)
	fmt.Fprintf(out, "Price Impact: %s%%\n", res.PriceImpactPercent.String())
	fmt.Fprintf(out, "Reserves: %s / %s\n", res.Reserves.A, res.Reserves.B)
}

type quoteError struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func printError(out io.Writer, err error) {
	e := quoteError{Error: err.Error()}
	if errors.Is(err, pkg.ErrPoolNotFound) {
		e.Hint = "check the pool address and that the RPC endpoint is on the right network"
	}
	if *jsonOutput {
		data, _ := json.MarshalIndent(e, "", "  ")
		fmt.Fprintln(out, string(data))
		return
	}
	fmt.Fprintln(out, "Error:", e.Error)
	if e.Hint != "" {
		fmt.Fprintln(out, "Hint:", e.Hint)
	}
}
