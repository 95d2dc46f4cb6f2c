package contractsapi

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	kwilClientType "github.com/trufnetwork/kwil-db/core/client/types"
	kwiltypes "github.com/trufnetwork/kwil-db/core/types"
)

// fakeNode is an in-memory order book node for a single caller wallet. Each
// transaction is applied as soon as it is accepted.
type fakeNode struct {
	mu sync.Mutex

	wallet  []byte
	now     time.Time
	markets map[int]*fakeMarket
	nextID  int
	// (query_id, outcome, price) -> amount; price 0 is a holding
	positions map[fakeKey]int64
	updated   map[fakeKey]int64
	clock     int64
	txCount   uint64

	// injected behaviour
	callLogs   string
	executeErr map[string]error
	customCall map[string]func(args []any) (*kwiltypes.CallResult, error)

	calls    []fakeCall
	executed []fakeCall
}

type fakeMarket struct {
	id              int
	queryComponents []byte
	bridge          string
	settleTime      int64
	settled         bool
	winning         *bool
	settledAt       *int64
	maxSpread       int
	minOrderSize    int64
	createdAt       int64
}

type fakeKey struct {
	queryID int
	outcome bool
	price   int
}

type fakeCall struct {
	action string
	args   []any
}

var _ ActionClient = (*fakeNode)(nil)

func newFakeNode(now time.Time) *fakeNode {
	wallet, _ := hex.DecodeString("4710a8d8f0d845da110086812a32de6d90d7ff5c")
	return &fakeNode{
		wallet:     wallet,
		now:        now,
		markets:    map[int]*fakeMarket{},
		nextID:     1,
		positions:  map[fakeKey]int64{},
		updated:    map[fakeKey]int64{},
		clock:      now.Unix(),
		executeErr: map[string]error{},
		customCall: map[string]func(args []any) (*kwiltypes.CallResult, error){},
	}
}

// newTestOrderBook wires an OrderBook to node with node's clock.
func newTestOrderBook(t *testing.T, node *fakeNode) *OrderBook {
	t.Helper()
	ob, err := LoadOrderBook(NewOrderBookOptions{
		Client:              node,
		DefaultDataProvider: node.walletHex(),
		Now:                 func() time.Time { return node.now },
	})
	require.NoError(t, err)
	return ob
}

func (f *fakeNode) walletHex() string { return "0x" + hex.EncodeToString(f.wallet) }

func (f *fakeNode) executedActions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.executed))
	for _, c := range f.executed {
		out = append(out, c.action)
	}
	return out
}

func (f *fakeNode) lastExecuted() fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.executed) == 0 {
		return fakeCall{}
	}
	return f.executed[len(f.executed)-1]
}

func (f *fakeNode) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// addMarket seeds a market directly.
func (f *fakeNode) addMarket(settleTime int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createMarketLocked("hoodi_tt2", []byte("seeded"), settleTime, 5, 1)
}

func (f *fakeNode) createMarketLocked(bridge string, qc []byte, settleTime int64, spread int, minSize int64) int {
	id := f.nextID
	f.nextID++
	f.markets[id] = &fakeMarket{
		id:              id,
		queryComponents: qc,
		bridge:          bridge,
		settleTime:      settleTime,
		maxSpread:       spread,
		minOrderSize:    minSize,
		createdAt:       f.now.Unix(),
	}
	return id
}

// ═══════════════════════════════════════════════════════════════
// TRANSACTIONS
// ═══════════════════════════════════════════════════════════════

func (f *fakeNode) Execute(_ context.Context, _ string, action string, inputs [][]any,
	_ ...kwilClientType.TxOpt) (kwiltypes.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var args []any
	if len(inputs) > 0 {
		args = inputs[0]
	}
	f.executed = append(f.executed, fakeCall{action: action, args: args})

	if err := f.executeErr[action]; err != nil {
		return kwiltypes.Hash{}, err
	}
	if err := f.apply(action, args); err != nil {
		return kwiltypes.Hash{}, err
	}

	f.txCount++
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], f.txCount)
	return kwiltypes.Hash(sha256.Sum256(seed[:])), nil
}

func (f *fakeNode) apply(action string, args []any) error {
	switch action {
	case "create_market":
		f.createMarketLocked(args[0].(string), args[1].([]byte), toInt64(args[2]), int(toInt64(args[3])), toInt64(args[4]))
		return nil
	case "place_split_limit_order":
		qid, truePrice, amount := int(toInt64(args[0])), int(toInt64(args[1])), toInt64(args[2])
		if err := f.openMarket(qid); err != nil {
			return err
		}
		f.add(fakeKey{qid, true, 0}, amount)
		f.add(fakeKey{qid, false, 100 - truePrice}, amount)
		return nil
	case "place_buy_order":
		qid, outcome, price, amount := int(toInt64(args[0])), args[1].(bool), int(toInt64(args[2])), toInt64(args[3])
		if err := f.openMarket(qid); err != nil {
			return err
		}
		if price < 1 || price > 99 {
			return fmt.Errorf("price must be between 1 and 99, got %d", price)
		}
		f.add(fakeKey{qid, outcome, -price}, amount)
		return nil
	case "place_sell_order":
		qid, outcome, price, amount := int(toInt64(args[0])), args[1].(bool), int(toInt64(args[2])), toInt64(args[3])
		if err := f.openMarket(qid); err != nil {
			return err
		}
		holding := fakeKey{qid, outcome, 0}
		if f.positions[holding] < amount {
			return fmt.Errorf("Insufficient shares: have %d, need %d", f.positions[holding], amount)
		}
		f.add(holding, -amount)
		f.add(fakeKey{qid, outcome, price}, amount)
		return nil
	case "cancel_order":
		key := fakeKey{int(toInt64(args[0])), args[1].(bool), int(toInt64(args[2]))}
		amount, ok := f.positions[key]
		if !ok {
			return fmt.Errorf("order not found at price %d", key.price)
		}
		f.add(key, -amount)
		if key.price > 0 {
			f.add(fakeKey{key.queryID, key.outcome, 0}, amount)
		}
		return nil
	case "change_bid", "change_ask":
		qid, outcome := int(toInt64(args[0])), args[1].(bool)
		oldKey := fakeKey{qid, outcome, int(toInt64(args[2]))}
		newKey := fakeKey{qid, outcome, int(toInt64(args[3]))}
		amount := toInt64(args[4])
		if _, ok := f.positions[oldKey]; !ok {
			return fmt.Errorf("no order at price %d", oldKey.price)
		}
		old := f.positions[oldKey]
		if action == "change_ask" {
			holding := fakeKey{qid, outcome, 0}
			if f.positions[holding]+old < amount {
				return fmt.Errorf("insufficient shares to increase ask")
			}
			f.add(holding, old-amount)
		}
		f.add(oldKey, -old)
		f.add(newKey, amount)
		return nil
	case "settle_market":
		m, ok := f.markets[int(toInt64(args[0]))]
		if !ok {
			return fmt.Errorf("market not found")
		}
		if m.settled {
			return fmt.Errorf("ERROR: market already settled")
		}
		if f.now.Unix() < m.settleTime {
			return fmt.Errorf("settlement time not reached")
		}
		winning := true
		at := f.now.Unix()
		m.settled, m.winning, m.settledAt = true, &winning, &at
		return nil
	case "sample_lp_rewards", "request_attestation":
		return nil
	}
	return fmt.Errorf("unknown action %s", action)
}

func (f *fakeNode) openMarket(qid int) error {
	m, ok := f.markets[qid]
	if !ok {
		return fmt.Errorf("market not found: %d", qid)
	}
	if m.settled {
		return fmt.Errorf("market already settled")
	}
	return nil
}

func (f *fakeNode) add(key fakeKey, delta int64) {
	f.clock++
	next := f.positions[key] + delta
	if next == 0 {
		delete(f.positions, key)
		delete(f.updated, key)
		return
	}
	f.positions[key] = next
	f.updated[key] = f.clock
}

// ═══════════════════════════════════════════════════════════════
// VIEW CALLS
// Values are rendered the way the gateway serializes them: INT8 as strings,
// INT as JSON numbers, BYTEA as base64 (wallets as 0x hex).
// ═══════════════════════════════════════════════════════════════

func (f *fakeNode) Call(_ context.Context, _ string, action string, inputs []any) (*kwiltypes.CallResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{action: action, args: inputs})

	if custom, ok := f.customCall[action]; ok {
		return custom(inputs)
	}

	var (
		cols []string
		rows [][]any
	)
	switch action {
	case "get_market_info", "get_market_by_hash":
		var m *fakeMarket
		if action == "get_market_info" {
			m = f.markets[int(toInt64(inputs[0]))]
		} else {
			for _, candidate := range f.markets {
				hash := sha256.Sum256(candidate.queryComponents)
				if string(hash[:]) == string(inputs[0].([]byte)) {
					m = candidate
				}
			}
		}
		cols = []string{"hash", "query_components", "bridge", "settle_time", "settled", "winning_outcome",
			"settled_at", "max_spread", "min_order_size", "created_at", "creator"}
		if m != nil {
			row := f.marketRow(m)
			if action == "get_market_by_hash" {
				row = append([]any{float64(m.id)}, row...)
			}
			rows = append(rows, row)
		}
	case "get_order_book":
		qid, outcome := int(toInt64(inputs[0])), inputs[1].(bool)
		cols = []string{"wallet_address", "price", "amount", "last_updated"}
		for _, key := range f.sortedKeys() {
			if key.queryID == qid && key.outcome == outcome && key.price != 0 {
				rows = append(rows, []any{f.walletHex(), float64(key.price),
					strconv.FormatInt(f.positions[key], 10), strconv.FormatInt(f.updated[key], 10)})
			}
		}
	case "get_user_positions":
		cols = []string{"query_id", "outcome", "price", "amount", "last_updated"}
		for _, key := range f.sortedKeys() {
			rows = append(rows, []any{float64(key.queryID), key.outcome, float64(key.price),
				strconv.FormatInt(f.positions[key], 10), strconv.FormatInt(f.updated[key], 10)})
		}
	case "get_market_depth":
		qid, outcome := int(toInt64(inputs[0])), inputs[1].(bool)
		cols = []string{"price", "total_amount"}
		for _, key := range f.sortedKeys() {
			if key.queryID == qid && key.outcome == outcome && key.price != 0 {
				rows = append(rows, []any{float64(key.price), strconv.FormatInt(f.positions[key], 10)})
			}
		}
	case "get_best_prices":
		qid, outcome := int(toInt64(inputs[0])), inputs[1].(bool)
		cols = []string{"best_bid", "best_ask", "spread"}
		var bid, ask any
		for key := range f.positions {
			if key.queryID != qid || key.outcome != outcome {
				continue
			}
			switch {
			case key.price < 0 && (bid == nil || float64(key.price) < bid.(float64)):
				bid = float64(key.price)
			case key.price > 0 && (ask == nil || float64(key.price) < ask.(float64)):
				ask = float64(key.price)
			}
		}
		rows = append(rows, []any{bid, ask, nil})
	case "get_user_collateral":
		cols = []string{"total_locked", "buy_orders_locked", "shares_value"}
	case "list_markets":
		cols = []string{"id", "hash", "settle_time", "settled", "winning_outcome", "max_spread", "min_order_size", "created_at"}
		ids := make([]int, 0, len(f.markets))
		for id := range f.markets {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			m := f.markets[id]
			if filter, ok := inputs[0].(bool); ok && filter != m.settled {
				continue
			}
			hash := sha256.Sum256(m.queryComponents)
			rows = append(rows, []any{float64(m.id), base64.StdEncoding.EncodeToString(hash[:]),
				strconv.FormatInt(m.settleTime, 10), m.settled, boolOrNil(m.winning), float64(m.maxSpread),
				strconv.FormatInt(m.minOrderSize, 10), strconv.FormatInt(m.createdAt, 10)})
		}
	case "market_exists":
		cols = []string{"market_exists"}
		exists := false
		for _, m := range f.markets {
			hash := sha256.Sum256(m.queryComponents)
			if string(hash[:]) == string(inputs[0].([]byte)) {
				exists = true
			}
		}
		rows = append(rows, []any{exists})
	default:
		msg := fmt.Sprintf("action %s does not exist", action)
		return &kwiltypes.CallResult{Error: &msg}, nil
	}

	return &kwiltypes.CallResult{
		QueryResult: &kwiltypes.QueryResult{ColumnNames: cols, Values: rows},
		Logs:        f.callLogs,
	}, nil
}

func (f *fakeNode) marketRow(m *fakeMarket) []any {
	hash := sha256.Sum256(m.queryComponents)
	var settledAt any
	if m.settledAt != nil {
		settledAt = strconv.FormatInt(*m.settledAt, 10)
	}
	return []any{
		base64.StdEncoding.EncodeToString(hash[:]),
		base64.StdEncoding.EncodeToString(m.queryComponents),
		m.bridge,
		strconv.FormatInt(m.settleTime, 10),
		m.settled,
		boolOrNil(m.winning),
		settledAt,
		float64(m.maxSpread),
		strconv.FormatInt(m.minOrderSize, 10),
		strconv.FormatInt(m.createdAt, 10),
		f.walletHex(),
	}
}

func (f *fakeNode) sortedKeys() []fakeKey {
	keys := make([]fakeKey, 0, len(f.positions))
	for k := range f.positions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.queryID != b.queryID {
			return a.queryID < b.queryID
		}
		if a.outcome != b.outcome {
			return a.outcome
		}
		return a.price < b.price
	})
	return keys
}

func boolOrNil(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	panic(fmt.Sprintf("unexpected numeric arg %T", v))
}

// rowsResult builds a successful call result with the given rows.
func rowsResult(rows ...[]any) (*kwiltypes.CallResult, error) {
	return &kwiltypes.CallResult{QueryResult: &kwiltypes.QueryResult{Values: rows}}, nil
}
