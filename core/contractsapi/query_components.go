package contractsapi

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	kwiltypes "github.com/trufnetwork/kwil-db/core/types"

	"github.com/trufnetwork/orderbook-go/core/types"
)

// QueryComponentsABI is the create_market tuple
// (address data_provider, bytes32 stream_id, string action_id, bytes args).
var QueryComponentsABI = abi.Arguments{
	{Type: mustABIType("address"), Name: "data_provider"},
	{Type: mustABIType("bytes32"), Name: "stream_id"},
	{Type: mustABIType("string"), Name: "action_id"},
	{Type: mustABIType("bytes"), Name: "args"},
}

func mustABIType(name string) abi.Type {
	t, err := abi.NewType(name, "", nil)
	if err != nil {
		panic(fmt.Sprintf("abi type %s: %v", name, err))
	}
	return t
}

// EncodeQueryComponents packs a market definition for create_market. The
// stream id must be exactly 32 characters and args come from EncodeActionArgs.
func EncodeQueryComponents(dataProvider, streamID, actionID string, args []byte) ([]byte, error) {
	if err := types.ValidateWalletHex("data_provider", dataProvider); err != nil {
		return nil, &types.EncodingError{Field: "data_provider", Err: err}
	}
	if len(streamID) != 32 {
		return nil, &types.EncodingError{
			Field: "stream_id",
			Err:   fmt.Errorf("must be exactly 32 characters, got %d", len(streamID)),
		}
	}
	if actionID == "" {
		return nil, &types.EncodingError{Field: "action_id", Err: fmt.Errorf("cannot be empty")}
	}

	var sidBytes32 [32]byte
	copy(sidBytes32[:], streamID)

	encoded, err := QueryComponentsABI.Pack(common.HexToAddress(dataProvider), sidBytes32, actionID, args)
	if err != nil {
		return nil, &types.EncodingError{Field: "query_components", Err: err}
	}
	return encoded, nil
}

// DecodeQueryComponents is the inverse of EncodeQueryComponents for a lowercase
// data provider. The address is returned as lowercase 0x hex in every case,
// since the tuple stores 20 raw bytes; the stream id has its zero padding removed.
func DecodeQueryComponents(encoded []byte) (dataProvider, streamID, actionID string, args []byte, err error) {
	unpacked, err := QueryComponentsABI.Unpack(encoded)
	if err != nil {
		return "", "", "", nil, fmt.Errorf("failed to ABI-decode query_components: %w", err)
	}
	if len(unpacked) != 4 {
		return "", "", "", nil, fmt.Errorf("expected 4 values, got %d", len(unpacked))
	}

	addr, ok := unpacked[0].(common.Address)
	if !ok {
		return "", "", "", nil, fmt.Errorf("expected address for data_provider, got %T", unpacked[0])
	}
	dataProvider = strings.ToLower(addr.Hex())

	sidBytes, ok := unpacked[1].([32]byte)
	if !ok {
		return "", "", "", nil, fmt.Errorf("expected [32]byte for stream_id, got %T", unpacked[1])
	}
	sidLen := 0
	for i := 31; i >= 0; i-- {
		if sidBytes[i] != 0 {
			sidLen = i + 1
			break
		}
	}
	streamID = string(sidBytes[:sidLen])

	actionID, ok = unpacked[2].(string)
	if !ok {
		return "", "", "", nil, fmt.Errorf("expected string for action_id, got %T", unpacked[2])
	}

	args, ok = unpacked[3].([]byte)
	if !ok {
		return "", "", "", nil, fmt.Errorf("expected []byte for args, got %T", unpacked[3])
	}
	return dataProvider, streamID, actionID, args, nil
}

// ComputeQueryHash is the 32-byte market identifier derived from encoded query components.
func ComputeQueryHash(queryComponents []byte) [32]byte {
	return sha256.Sum256(queryComponents)
}

// MarketData is a decoded market definition in display form.
type MarketData struct {
	DataProvider string   `json:"data_provider"`
	StreamID     string   `json:"stream_id"`
	ActionID     string   `json:"action_id"`
	Type         string   `json:"type"`       // "above", "below", "between", "equals", "unknown"
	Thresholds   []string `json:"thresholds"` // formatted numeric values
	FrozenAt     *int64   `json:"frozen_at,omitempty"`
}

// thresholdCount is how many decimal arguments follow (data_provider, stream_id, timestamp).
var thresholdCount = map[string]int{
	types.MarketTypeAbove:   1,
	types.MarketTypeBelow:   1,
	types.MarketTypeBetween: 2,
	types.MarketTypeEquals:  2,
}

// DecodeMarketData unpacks query components and classifies the condition.
// Unknown actions decode with Type "unknown" and no thresholds.
func DecodeMarketData(encoded []byte) (*MarketData, error) {
	dataProvider, streamID, actionID, argsBytes, err := DecodeQueryComponents(encoded)
	if err != nil {
		return nil, err
	}

	args, err := DecodeActionArgs(argsBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode action args: %w", err)
	}

	market := &MarketData{
		DataProvider: dataProvider,
		StreamID:     streamID,
		ActionID:     actionID,
		Type:         types.MarketTypeOf(actionID),
		Thresholds:   []string{},
	}

	n := thresholdCount[market.Type]
	if n == 0 || len(args) < 3+n {
		return market, nil
	}
	for _, arg := range args[3 : 3+n] {
		market.Thresholds = append(market.Thresholds, formatArg(arg))
	}
	if len(args) > 3+n {
		if v, ok := args[3+n].(int64); ok {
			market.FrozenAt = &v
		}
	}
	return market, nil
}

// formatArg renders a decoded action argument as a string.
func formatArg(arg any) string {
	switch v := arg.(type) {
	case nil:
		return ""
	case string:
		return v
	case *kwiltypes.Decimal:
		if v == nil {
			return ""
		}
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(arg)
	}
}
