package contractsapi

import (
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trufnetwork/orderbook-go/core/types"
)

const (
	qcProvider = "0x1111111111111111111111111111111111111111"
	qcStreamID = "stbtcusd000000000000000000000000"
)

// ═══════════════════════════════════════════════════════════════
// ENCODE QUERY COMPONENTS TESTS
// ═══════════════════════════════════════════════════════════════

func TestEncodeQueryComponents(t *testing.T) {
	args := []byte{0x00, 0x00, 0x00, 0x20}

	encoded, err := EncodeQueryComponents(qcProvider, qcStreamID, "get_record", args)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(encoded), types.MinQueryComponentsSize)

	unpacked, err := QueryComponentsABI.Unpack(encoded)
	require.NoError(t, err)
	require.Len(t, unpacked, 4)

	var sid [32]byte
	copy(sid[:], qcStreamID)
	assert.Equal(t, common.HexToAddress(qcProvider), unpacked[0])
	assert.Equal(t, sid, unpacked[1])
	assert.Equal(t, "get_record", unpacked[2])
	assert.Equal(t, args, unpacked[3])
}

func TestEncodeQueryComponents_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		provider    string
		streamID    string
		actionID    string
		expectError string
	}{
		{"provider not hex", "invalid", qcStreamID, "get_record", "data_provider"},
		{"provider too short", "0x1111", qcStreamID, "get_record", "data_provider"},
		{"provider too long", "0x11111111111111111111111111111111111111111", qcStreamID, "get_record", "data_provider"},
		{"provider missing 0x", "1111111111111111111111111111111111111111", qcStreamID, "get_record", "data_provider"},
		{"provider bad hex", "0xzz11111111111111111111111111111111111111", qcStreamID, "get_record", "invalid hex"},
		{"stream too short", qcProvider, "btc", "get_record", "must be exactly 32 characters, got 3"},
		{"stream too long", qcProvider, qcStreamID + "0", "get_record", "must be exactly 32 characters, got 33"},
		{"stream empty", qcProvider, "", "get_record", "stream_id"},
		{"empty action", qcProvider, qcStreamID, "", "action_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeQueryComponents(tt.provider, tt.streamID, tt.actionID, []byte{})
			require.Error(t, err)
			assert.Nil(t, encoded)
			assert.True(t, errors.Is(err, types.ErrEncoding))
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestEncodeQueryComponents_EveryAction(t *testing.T) {
	for _, info := range types.BinaryActions() {
		t.Run(info.Name, func(t *testing.T) {
			encoded, err := EncodeQueryComponents(qcProvider, qcStreamID, info.Name, []byte{0x00})
			require.NoError(t, err)

			_, _, actionID, _, err := DecodeQueryComponents(encoded)
			require.NoError(t, err)
			assert.Equal(t, info.Name, actionID)
		})
	}
}

func TestEncodeQueryComponents_Args(t *testing.T) {
	tests := []struct {
		name string
		args []byte
	}{
		{"empty args", []byte{}},
		{"single byte", []byte{0xFF}},
		{"large args", make([]byte, 1024)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeQueryComponents(qcProvider, qcStreamID, "get_record", tt.args)
			require.NoError(t, err)

			_, _, _, args, err := DecodeQueryComponents(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestEncodeQueryComponents_DeterministicAndDistinct(t *testing.T) {
	base, err := EncodeQueryComponents(qcProvider, qcStreamID, "get_record", []byte{0x00})
	require.NoError(t, err)
	again, err := EncodeQueryComponents(qcProvider, qcStreamID, "get_record", []byte{0x00})
	require.NoError(t, err)
	assert.Equal(t, base, again)
	assert.Equal(t, ComputeQueryHash(base), ComputeQueryHash(again))

	variants := [][]string{
		{"0x2222222222222222222222222222222222222222", qcStreamID, "get_record"},
		{qcProvider, "ethusd00000000000000000000000000", "get_record"},
		{qcProvider, qcStreamID, "get_index"},
	}
	for _, v := range variants {
		other, err := EncodeQueryComponents(v[0], v[1], v[2], []byte{0x00})
		require.NoError(t, err)
		assert.NotEqual(t, base, other)
		assert.NotEqual(t, ComputeQueryHash(base), ComputeQueryHash(other))
	}
}

// ═══════════════════════════════════════════════════════════════
// DECODE TESTS
// ═══════════════════════════════════════════════════════════════

func TestDecodeQueryComponents(t *testing.T) {
	for _, addr := range []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		qcProvider,
	} {
		encoded, err := EncodeQueryComponents(addr, qcStreamID, "get_record", []byte{0x01})
		require.NoError(t, err)

		provider, streamID, actionID, args, err := DecodeQueryComponents(encoded)
		require.NoError(t, err)
		assert.Equal(t, strings.ToLower(addr), provider)
		assert.Equal(t, qcStreamID, streamID)
		assert.Equal(t, "get_record", actionID)
		assert.Equal(t, []byte{0x01}, args)
	}

	_, _, _, _, err := DecodeQueryComponents([]byte{0x01, 0x02})
	require.Error(t, err)
}

func TestQueryComponentsRoundTrip(t *testing.T) {
	const mixed = "0x4710A8D8F0D845da110086812a32de6d90d7ff5C"

	t.Run("canonical input decodes to itself", func(t *testing.T) {
		provider := strings.ToLower(mixed)
		args := []byte{0xde, 0xad, 0xbe, 0xef}
		encoded, err := EncodeQueryComponents(provider, qcStreamID, "price_above_threshold", args)
		require.NoError(t, err)

		dp, sid, aid, gotArgs, err := DecodeQueryComponents(encoded)
		require.NoError(t, err)
		assert.Equal(t, []any{provider, qcStreamID, "price_above_threshold", args}, []any{dp, sid, aid, gotArgs})

		again, err := EncodeQueryComponents(dp, sid, aid, gotArgs)
		require.NoError(t, err)
		assert.Equal(t, encoded, again)
	})

	t.Run("builder lowercases the provider", func(t *testing.T) {
		cond := func(provider string) *types.PriceAboveThresholdInput {
			return &types.PriceAboveThresholdInput{
				QueryTarget: types.QueryTarget{DataProvider: provider, StreamID: qcStreamID, Timestamp: 1735689600},
				Threshold:   "100000",
			}
		}
		fromMixed, err := NewMarketDefinition("").Build(cond(mixed))
		require.NoError(t, err)
		fromLower, err := NewMarketDefinition("").Build(cond(strings.ToLower(mixed)))
		require.NoError(t, err)
		assert.Equal(t, fromLower, fromMixed, "same market whatever the address case")

		md, err := DecodeMarketData(fromMixed)
		require.NoError(t, err)
		_, _, _, argsBytes, err := DecodeQueryComponents(fromMixed)
		require.NoError(t, err)
		args, err := DecodeActionArgs(argsBytes)
		require.NoError(t, err)
		assert.Equal(t, md.DataProvider, args[0], "tuple address and argument text agree")
	})
}

func TestComputeQueryHash(t *testing.T) {
	encoded, err := EncodeQueryComponents(qcProvider, qcStreamID, "get_record", nil)
	require.NoError(t, err)
	assert.Equal(t, sha256.Sum256(encoded), ComputeQueryHash(encoded))
}

func TestDecodeMarketData(t *testing.T) {
	frozen := int64(1735600000)
	tests := []struct {
		name       string
		cond       types.MarketCondition
		wantType   string
		thresholds []string
		frozenAt   *int64
	}{
		{
			name:       "above",
			cond:       &types.PriceAboveThresholdInput{QueryTarget: types.QueryTarget{DataProvider: qcProvider, StreamID: qcStreamID, Timestamp: 1735689600}, Threshold: "100000"},
			wantType:   types.MarketTypeAbove,
			thresholds: []string{"100000.000000000000000000"},
		},
		{
			name:       "below",
			cond:       &types.PriceBelowThresholdInput{QueryTarget: types.QueryTarget{DataProvider: qcProvider, StreamID: qcStreamID, Timestamp: 1735689600}, Threshold: "4"},
			wantType:   types.MarketTypeBelow,
			thresholds: []string{"4.000000000000000000"},
		},
		{
			name:       "between",
			cond:       &types.ValueInRangeInput{QueryTarget: types.QueryTarget{DataProvider: qcProvider, StreamID: qcStreamID, Timestamp: 1735689600, FrozenAt: &frozen}, MinValue: "90000", MaxValue: "110000"},
			wantType:   types.MarketTypeBetween,
			thresholds: []string{"90000.000000000000000000", "110000.000000000000000000"},
			frozenAt:   &frozen,
		},
		{
			name:       "equals",
			cond:       &types.ValueEqualsInput{QueryTarget: types.QueryTarget{DataProvider: qcProvider, StreamID: qcStreamID, Timestamp: 1735689600}, TargetValue: "5.25", Tolerance: "0"},
			wantType:   types.MarketTypeEquals,
			thresholds: []string{"5.250000000000000000", "0.000000000000000000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := NewMarketDefinition("").Build(tt.cond)
			require.NoError(t, err)

			market, err := DecodeMarketData(encoded)
			require.NoError(t, err)
			assert.Equal(t, qcProvider, market.DataProvider)
			assert.Equal(t, qcStreamID, market.StreamID)
			assert.Equal(t, tt.cond.ActionName(), market.ActionID)
			assert.Equal(t, tt.wantType, market.Type)
			assert.Equal(t, tt.thresholds, market.Thresholds)
			assert.Equal(t, tt.frozenAt, market.FrozenAt)
		})
	}

	t.Run("non-binary action", func(t *testing.T) {
		args, err := EncodeActionArgs([]any{qcProvider, qcStreamID, int64(1), int64(2), nil, false})
		require.NoError(t, err)
		encoded, err := EncodeQueryComponents(qcProvider, qcStreamID, "get_record", args)
		require.NoError(t, err)

		market, err := DecodeMarketData(encoded)
		require.NoError(t, err)
		assert.Equal(t, types.MarketTypeUnknown, market.Type)
		assert.Empty(t, market.Thresholds)
	})
}
