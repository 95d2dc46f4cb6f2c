package main

import (
	"context"
	"encoding/hex"
	"flag"
	"strings"

	"github.com/pkg/errors"

	"github.com/trufnetwork/orderbook-go/core/contractsapi"
	"github.com/trufnetwork/orderbook-go/core/types"
	"github.com/trufnetwork/orderbook-go/core/util"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commandOrder = []string{
	"markets", "info", "book", "best", "snapshot", "positions", "balance",
	"create", "split", "buy", "sell", "cancel", "settle", "verify", "attestations",
}

var commands = map[string]command{
	"markets":   {"list markets", runMarkets},
	"info":      {"show one market by id or hash", runInfo},
	"book":      {"show the order book of one outcome", runBook},
	"best":      {"show best bid, ask and spread of one outcome", runBest},
	"snapshot":  {"show market info and both books", runSnapshot},
	"positions": {"show the caller's positions and collateral", runPositions},
	"balance":   {"show free collateral on a bridge", runBalance},
	"create":    {"create a price-above-threshold market", runCreate},
	"split":     {"mint a YES/NO pair and list NO for sale", runSplit},
	"buy":       {"place a buy order (price -99..-1)", runBuy},
	"sell":      {"place a sell order (price 1..99)", runSell},
	"cancel":    {"cancel an open order", runCancel},
	"settle":    {"settle a market after its settle time", runSettle},
	"verify":    {"fetch an attestation and recover its signer", runVerify},

	"attestations": {"list attestation requests", runAttestations},
}

// parseOutcome accepts yes/no as well as true/false.
func parseOutcome(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true":
		return true, nil
	case "no", "false":
		return false, nil
	}
	return false, errors.Errorf("outcome must be yes or no, got %q", s)
}

func runMarkets(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("markets", flag.ExitOnError)
	settled := fs.String("settled", "", "true or false to filter by settlement")
	limit := fs.Int("limit", 0, "page size (1-100)")
	offset := fs.Int("offset", 0, "page offset")
	_ = fs.Parse(args)

	var input types.ListMarketsInput
	switch *settled {
	case "":
	case "true", "false":
		v := *settled == "true"
		input.SettledFilter = &v
	default:
		return errors.Errorf("-settled must be true or false, got %q", *settled)
	}
	if *limit != 0 {
		input.Limit = limit
	}
	if *offset != 0 {
		input.Offset = offset
	}
	resp, err := a.book.ListMarkets(ctx, input)
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runInfo(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	id := fs.Int("id", 0, "market id")
	hash := fs.String("hash", "", "hex query hash, instead of -id")
	_ = fs.Parse(args)

	if *hash != "" {
		b, err := hex.DecodeString(strings.TrimPrefix(*hash, "0x"))
		if err != nil {
			return errors.Wrap(err, "decode -hash")
		}
		resp, err := a.book.GetMarketByHash(ctx, types.GetMarketByHashInput{QueryHash: b})
		if err != nil {
			return err
		}
		return printJSON(resp)
	}
	resp, err := a.book.GetMarketInfo(ctx, types.GetMarketInfoInput{QueryID: *id})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func outcomeFlags(name string, args []string) (types.OutcomeBookInput, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	id := fs.Int("id", 0, "market id")
	outcome := fs.String("outcome", "yes", "yes or no")
	_ = fs.Parse(args)

	o, err := parseOutcome(*outcome)
	if err != nil {
		return types.OutcomeBookInput{}, err
	}
	return types.OutcomeBookInput{QueryID: *id, Outcome: o}, nil
}

func runBook(ctx context.Context, a *app, args []string) error {
	input, err := outcomeFlags("book", args)
	if err != nil {
		return err
	}
	resp, err := a.book.GetOrderBook(ctx, input)
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runBest(ctx context.Context, a *app, args []string) error {
	input, err := outcomeFlags("best", args)
	if err != nil {
		return err
	}
	resp, err := a.book.GetBestPrices(ctx, input)
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runSnapshot(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	id := fs.Int("id", 0, "market id")
	_ = fs.Parse(args)

	snap, err := a.book.GetMarketSnapshot(ctx, types.GetMarketInfoInput{QueryID: *id})
	if err != nil {
		return err
	}
	return printJSON(snap)
}

func runPositions(ctx context.Context, a *app, _ []string) error {
	positions, err := a.book.GetUserPositions(ctx)
	if err != nil {
		return err
	}
	collateral, err := a.book.GetUserCollateral(ctx)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"wallet":     a.client.Address(),
		"positions":  positions.Data,
		"collateral": collateral.Data,
	})
}

func runBalance(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	bridge := fs.String("bridge", a.cfg.Market.DefaultBridge, "collateral bridge")
	wallet := fs.String("wallet", a.client.Address(), "wallet address")
	_ = fs.Parse(args)

	resp, err := a.book.GetBridgeBalance(ctx, types.GetBridgeBalanceInput{Bridge: *bridge, Wallet: *wallet})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runCreate(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	provider := fs.String("provider", "", "data provider, defaults to the signer")
	stream := fs.String("stream", "", "32-character stream id")
	timestamp := fs.Int64("timestamp", 0, "unix time the value is read at")
	threshold := fs.String("threshold", "", "decimal threshold")
	settle := fs.Int64("settle", 0, "unix settle time")
	bridge := fs.String("bridge", a.cfg.Market.DefaultBridge, "collateral bridge")
	spread := fs.Int("max-spread", 5, "LP reward spread in cents")
	minSize := fs.Int64("min-order-size", 1, "LP reward minimum order size")
	_ = fs.Parse(args)

	if err := a.requireSigner(); err != nil {
		return err
	}
	hash, err := a.book.CreatePriceAboveThresholdMarket(ctx, types.CreatePriceAboveThresholdMarketInput{
		PriceAboveThresholdInput: types.PriceAboveThresholdInput{
			QueryTarget: types.QueryTarget{DataProvider: *provider, StreamID: *stream, Timestamp: *timestamp},
			Threshold:   *threshold,
		},
		MarketParams: types.MarketParams{
			Bridge: *bridge, SettleTime: *settle, MaxSpread: *spread, MinOrderSize: *minSize,
		},
	})
	if err != nil {
		return err
	}
	return a.submitted(ctx, "create_market", hash, nil)
}

// orderFlags parses the flags shared by the order commands.
func orderFlags(name string, args []string, needAmount bool) (id int, outcome bool, price int, amount int64, err error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fid := fs.Int("id", 0, "market id")
	foutcome := fs.String("outcome", "yes", "yes or no")
	fprice := fs.Int("price", 0, "price in cents")
	var famount *int64
	if needAmount {
		famount = fs.Int64("amount", 0, "shares")
	}
	_ = fs.Parse(args)

	outcome, err = parseOutcome(*foutcome)
	if err != nil {
		return 0, false, 0, 0, err
	}
	if famount != nil {
		amount = *famount
	}
	return *fid, outcome, *fprice, amount, nil
}

func collateral(price int, amount int64) map[string]any {
	wei, err := util.CollateralWei(price, amount)
	if err != nil {
		return nil
	}
	tokens, err := util.FormatWei(wei)
	if err != nil {
		return nil
	}
	return map[string]any{"collateral_wei": wei, "collateral": tokens}
}

func runSplit(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	id := fs.Int("id", 0, "market id")
	price := fs.Int("price", 0, "YES price in cents (1-99)")
	amount := fs.Int64("amount", 0, "pairs to mint")
	_ = fs.Parse(args)

	if err := a.requireSigner(); err != nil {
		return err
	}
	hash, err := a.book.PlaceSplitLimitOrder(ctx, types.PlaceSplitLimitOrderInput{
		QueryID: *id, TruePrice: *price, Amount: *amount,
	})
	if err != nil {
		return err
	}
	// each pair locks one full unit of collateral
	return a.submitted(ctx, "place_split_limit_order", hash, collateral(types.PairValueCents, *amount))
}

func runBuy(ctx context.Context, a *app, args []string) error {
	id, outcome, price, amount, err := orderFlags("buy", args, true)
	if err != nil {
		return err
	}
	if err := a.requireSigner(); err != nil {
		return err
	}
	hash, err := a.book.PlaceBuyOrder(ctx, types.PlaceBuyOrderInput{
		QueryID: id, Outcome: outcome, Price: price, Amount: amount,
	})
	if err != nil {
		return err
	}
	return a.submitted(ctx, "place_buy_order", hash, collateral(price, amount))
}

func runSell(ctx context.Context, a *app, args []string) error {
	id, outcome, price, amount, err := orderFlags("sell", args, true)
	if err != nil {
		return err
	}
	if err := a.requireSigner(); err != nil {
		return err
	}
	hash, err := a.book.PlaceSellOrder(ctx, types.PlaceSellOrderInput{
		QueryID: id, Outcome: outcome, Price: price, Amount: amount,
	})
	if err != nil {
		return err
	}
	return a.submitted(ctx, "place_sell_order", hash, nil)
}

func runCancel(ctx context.Context, a *app, args []string) error {
	id, outcome, price, _, err := orderFlags("cancel", args, false)
	if err != nil {
		return err
	}
	if err := a.requireSigner(); err != nil {
		return err
	}
	hash, err := a.book.CancelOrder(ctx, types.CancelOrderInput{QueryID: id, Outcome: outcome, Price: price})
	if err != nil {
		return err
	}
	return a.submitted(ctx, "cancel_order", hash, nil)
}

func runSettle(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("settle", flag.ExitOnError)
	id := fs.Int("id", 0, "market id")
	check := fs.Bool("check", true, "refuse locally before the settle time")
	_ = fs.Parse(args)

	if err := a.requireSigner(); err != nil {
		return err
	}
	hash, err := a.book.SettleMarket(ctx, types.SettleMarketInput{QueryID: *id, CheckSettleable: *check})
	if err != nil {
		return err
	}
	return a.submitted(ctx, "settle_market", hash, nil)
}

func runVerify(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	tx := fs.String("tx", "", "request_attestation transaction id")
	_ = fs.Parse(args)

	actions, err := attestationActions(a)
	if err != nil {
		return err
	}
	verified, err := actions.FetchVerifiedAttestation(ctx, types.GetSignedAttestationInput{RequestTxID: *tx})
	if err != nil {
		return err
	}
	return printJSON(verified)
}

func attestationActions(a *app) (*contractsapi.AttestationAction, error) {
	loaded, err := a.client.LoadAttestationActions()
	if err != nil {
		return nil, err
	}
	actions, ok := loaded.(*contractsapi.AttestationAction)
	if !ok {
		return nil, errors.Errorf("unexpected attestation actions type %T", loaded)
	}
	return actions, nil
}

func runAttestations(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("attestations", flag.ExitOnError)
	requester := fs.String("requester", "", "wallet address filter")
	limit := fs.Int("limit", 0, "page size (1-5000)")
	offset := fs.Int("offset", 0, "page offset")
	order := fs.String("order", "", "created_height or signed_height, then ASC or DESC")
	_ = fs.Parse(args)

	var input types.ListAttestationsInput
	if *requester != "" {
		b, err := hex.DecodeString(strings.TrimPrefix(*requester, "0x"))
		if err != nil {
			return errors.Wrap(err, "decode -requester")
		}
		input.Requester = b
	}
	if *limit != 0 {
		input.Limit = limit
	}
	if *offset != 0 {
		input.Offset = offset
	}
	if *order != "" {
		input.OrderBy = order
	}

	actions, err := attestationActions(a)
	if err != nil {
		return err
	}
	resp, err := actions.ListAttestations(ctx, input)
	if err != nil {
		return err
	}
	return printJSON(resp)
}
