package contractsapi

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	kwilClientType "github.com/trufnetwork/kwil-db/core/client/types"
	kwiltypes "github.com/trufnetwork/kwil-db/core/types"
	"go.uber.org/zap"

	"github.com/trufnetwork/orderbook-go/core/logging"
	"github.com/trufnetwork/orderbook-go/core/metrics"
	"github.com/trufnetwork/orderbook-go/core/types"
)

// ActionClient is the part of a node transport the order book needs.
// Both the gateway client and tnclient.Transport satisfy it.
type ActionClient interface {
	Call(ctx context.Context, namespace string, action string, inputs []any) (*kwiltypes.CallResult, error)
	Execute(ctx context.Context, namespace string, action string, inputs [][]any, opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error)
}

// actionRunner issues view calls and transactions against a node namespace.
type actionRunner struct {
	_client ActionClient
	logger  *zap.Logger
}

// OrderBook provides methods for interacting with the prediction market order book
type OrderBook struct {
	actionRunner
	cache   types.MarketCache
	builder *MarketDefinition
	now     func() time.Time
}

// Compile-time check that OrderBook implements IOrderBook
var _ types.IOrderBook = (*OrderBook)(nil)

// NewOrderBookOptions contains options for creating an OrderBook instance
type NewOrderBookOptions struct {
	Client ActionClient
	// Cache is consulted before get_market_info and get_market_by_hash. Optional.
	Cache types.MarketCache
	// DefaultDataProvider fills in market definitions that omit a data provider,
	// normally the signer's address.
	DefaultDataProvider string
	// Now is the clock used for settle-time checks. Defaults to time.Now.
	Now func() time.Time
}

// LoadOrderBook creates a new OrderBook instance with the given options
func LoadOrderBook(options NewOrderBookOptions) (*OrderBook, error) {
	if options.Client == nil {
		return nil, errors.New("kwil client is required")
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}
	return &OrderBook{
		actionRunner: actionRunner{_client: options.Client, logger: logging.Logger.Named("orderbook")},
		cache:        options.Cache,
		builder:      NewMarketDefinition(options.DefaultDataProvider),
		now:          now,
	}, nil
}

// ═══════════════════════════════════════════════════════════════
// HELPER METHODS
// ═══════════════════════════════════════════════════════════════

// call wraps _client.Call for read operations and parses the node's cache notice.
func (o *actionRunner) call(ctx context.Context, action string, args []any) (*kwiltypes.QueryResult, types.CacheMetadata, error) {
	start := time.Now()
	callResult, err := o._client.Call(ctx, "", action, args)
	metrics.ActionCallDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())

	md := types.CacheMetadata{Action: action}
	if err != nil {
		metrics.ActionCalls.WithLabelValues(action, metrics.StatusError).Inc()
		return nil, md, errors.Wrapf(err, "failed to call %s", action)
	}
	if callResult == nil {
		metrics.ActionCalls.WithLabelValues(action, metrics.StatusError).Inc()
		return nil, md, fmt.Errorf("action %s returned nil result", action)
	}
	if callResult.Error != nil {
		metrics.ActionCalls.WithLabelValues(action, metrics.StatusError).Inc()
		msg := *callResult.Error
		if kind := types.ClassifyRemoteMessage(msg); kind != nil {
			return nil, md, errors.Wrapf(kind, "action %s returned error: %s", action, msg)
		}
		return nil, md, fmt.Errorf("action %s returned error: %s", action, msg)
	}
	if callResult.QueryResult == nil {
		metrics.ActionCalls.WithLabelValues(action, metrics.StatusError).Inc()
		return nil, md, fmt.Errorf("action %s returned nil QueryResult", action)
	}
	metrics.ActionCalls.WithLabelValues(action, metrics.StatusSuccess).Inc()

	md = types.ParseCacheMetadata(callResult.Logs)
	md.Action = action
	md.RowsServed = len(callResult.QueryResult.Values)
	if md.Source == types.CacheSourceNode {
		result := metrics.ResultMiss
		if md.CacheHit {
			result = metrics.ResultHit
		}
		metrics.CacheLookups.WithLabelValues(types.CacheSourceNode, result).Inc()
	}
	return callResult.QueryResult, md, nil
}

// execute wraps _client.Execute for write operations. It never retries.
func (o *actionRunner) execute(ctx context.Context, action string, args [][]any,
	opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error) {
	txHash, err := o._client.Execute(ctx, "", action, args, opts...)
	if err != nil {
		metrics.Submissions.WithLabelValues(action, metrics.StatusRejected).Inc()
		o.logger.Debug("submission rejected", zap.String("action", action), zap.Error(err))
		return kwiltypes.Hash{}, types.ClassifyRemoteError(action, err)
	}
	metrics.Submissions.WithLabelValues(action, metrics.StatusAccepted).Inc()
	o.logger.Debug("transaction submitted", zap.String("action", action), zap.String("tx_hash", txHash.String()))
	return txHash, nil
}

// invalid records an input rejected before any network call.
func (o *actionRunner) invalid(action string, err error) error {
	metrics.Submissions.WithLabelValues(action, metrics.StatusInvalid).Inc()
	return errors.WithStack(err)
}

// respond bundles parsed data with the cache status of the call that produced it.
func respond[T any](data T, md types.CacheMetadata) types.QueryResponse[T] {
	return types.QueryResponse[T]{Data: data, Cache: md}
}

// collectRows runs a list action and parses every returned row.
func collectRows[T any](ctx context.Context, r *actionRunner, action string, args []any,
	parse func(row []any) (T, error)) (types.QueryResponse[[]T], error) {
	result, md, err := r.call(ctx, action, args)
	if err != nil {
		return types.QueryResponse[[]T]{}, errors.WithStack(err)
	}

	items := make([]T, 0, len(result.Values))
	for _, row := range result.Values {
		item, err := parse(row)
		if err != nil {
			return types.QueryResponse[[]T]{}, errors.WithStack(err)
		}
		items = append(items, item)
	}
	return respond(items, md), nil
}
