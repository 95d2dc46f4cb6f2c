package contractsapi

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	kwiltypes "github.com/trufnetwork/kwil-db/core/types"

	"github.com/trufnetwork/orderbook-go/core/types"
)

// Limits applied while decoding untrusted payloads
const (
	maxRows = 100000 // rows in an attested result
	maxArgs = 10     // arguments of any attestable action
)

// datapointsABI is the result layout: abi.encode(uint256[] timestamps, int256[] values)
var datapointsABI = abi.Arguments{{Type: mustABIType("uint256[]")}, {Type: mustABIType("int256[]")}}

// booleanABI is the result of a binary action: abi.encode(bool)
var booleanABI = abi.Arguments{{Type: mustABIType("bool")}}

// Binary reading helpers. Out-of-range reads return 0; callers bound-check first.

func readUint32LE(buf []byte, offset int) uint32 {
	if offset+4 > len(buf) {
		return 0
	}
	return binary.LittleEndian.Uint32(buf[offset:])
}

func readUint32BE(buf []byte, offset int) uint32 {
	if offset+4 > len(buf) {
		return 0
	}
	return binary.BigEndian.Uint32(buf[offset:])
}

func readUint16BE(buf []byte, offset int) uint16 {
	if offset+2 > len(buf) {
		return 0
	}
	return binary.BigEndian.Uint16(buf[offset:])
}

func readUint64BE(buf []byte, offset int) uint64 {
	if offset+8 > len(buf) {
		return 0
	}
	return binary.BigEndian.Uint64(buf[offset:])
}

// decodeEncodedValue decodes a kwil-db EncodedValue and dereferences scalar pointers.
func decodeEncodedValue(buf []byte) (any, error) {
	var encodedVal kwiltypes.EncodedValue
	if err := encodedVal.UnmarshalBinary(buf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal EncodedValue: %w", err)
	}

	value, err := encodedVal.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode EncodedValue: %w", err)
	}

	switch v := value.(type) {
	case nil:
		return nil, nil
	case *string:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	case *int64:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	case *bool:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	case *[]byte:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	default:
		return value, nil
	}
}

// formatFixedPoint renders value / 10^decimals without trailing zeros.
func formatFixedPoint(value *big.Int, decimals int) string {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(new(big.Int).Abs(value), scale, new(big.Int))

	var sb strings.Builder
	if value.Sign() < 0 {
		sb.WriteByte('-')
	}
	sb.WriteString(whole.String())
	if frac.Sign() != 0 {
		digits := frac.String()
		digits = strings.Repeat("0", decimals-len(digits)) + digits
		sb.WriteByte('.')
		sb.WriteString(strings.TrimRight(digits, "0"))
	}
	return sb.String()
}

// decodeABIDatapoints decodes the attested result into [timestamp, value] rows.
// Values carry 18 decimals.
func decodeABIDatapoints(data []byte) ([]types.DecodedRow, error) {
	if len(data) == 0 {
		return []types.DecodedRow{}, nil
	}

	columns, err := datapointsABI.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack datapoints: %w", err)
	}
	var series [2][]*big.Int
	for i, name := range []string{"timestamps", "values"} {
		if i >= len(columns) {
			return nil, fmt.Errorf("datapoints missing %s", name)
		}
		col, ok := columns[i].([]*big.Int)
		if !ok {
			return nil, fmt.Errorf("datapoints %s: unexpected %T", name, columns[i])
		}
		series[i] = col
	}

	ts, vals := series[0], series[1]
	switch {
	case len(ts) != len(vals):
		return nil, fmt.Errorf("datapoints have %d timestamps and %d values", len(ts), len(vals))
	case len(ts) > maxRows:
		return nil, fmt.Errorf("row count %d exceeds maximum %d", len(ts), maxRows)
	}

	rows := make([]types.DecodedRow, len(ts))
	for i := range ts {
		rows[i].Values = []any{ts[i].String(), formatFixedPoint(vals[i], 18)}
	}
	return rows, nil
}

func decodeABIBoolean(data []byte) (bool, error) {
	values, err := booleanABI.Unpack(data)
	if err != nil {
		return false, fmt.Errorf("unpack boolean: %w", err)
	}
	if len(values) != 1 {
		return false, fmt.Errorf("boolean result has %d values", len(values))
	}
	b, ok := values[0].(bool)
	if !ok {
		return false, fmt.Errorf("boolean result: unexpected %T", values[0])
	}
	return b, nil
}

// payloadReader walks the big-endian sections of a canonical payload.
type payloadReader struct {
	buf    []byte
	offset int
}

func (r *payloadReader) fixed(n int, what string) ([]byte, error) {
	if r.offset+n > len(r.buf) {
		return nil, fmt.Errorf("payload too short for %s", what)
	}
	b := r.buf[r.offset : r.offset+n]
	r.offset += n
	return b, nil
}

func (r *payloadReader) prefixed(what string) ([]byte, error) {
	if r.offset+4 > len(r.buf) {
		return nil, fmt.Errorf("payload too short for %s length", what)
	}
	n := int(readUint32BE(r.buf, r.offset))
	r.offset += 4
	return r.fixed(n, what)
}

// ParseAttestationPayload parses a canonical attestation payload (without signature)
//
// Payload format:
//  1. Version (1 byte)
//  2. Algorithm (1 byte, 0 = secp256k1)
//  3. Block height (8 bytes, uint64 big-endian)
//  4. Data provider (length-prefixed with 4 bytes big-endian)
//  5. Stream ID (length-prefixed with 4 bytes big-endian)
//  6. Action ID (2 bytes, uint16 big-endian)
//  7. Arguments (length-prefixed with 4 bytes big-endian)
//  8. Result (length-prefixed with 4 bytes big-endian)
//
// Binary actions attest abi.encode(bool), returned in BooleanResult. Every
// other action attests datapoints, returned in Result.
func ParseAttestationPayload(payload []byte) (*types.ParsedAttestationPayload, error) {
	r := &payloadReader{buf: payload}

	header, err := r.fixed(2, "version and algorithm")
	if err != nil {
		return nil, err
	}
	height, err := r.fixed(8, "block height")
	if err != nil {
		return nil, err
	}

	dataProviderBytes, err := r.prefixed("data provider")
	if err != nil {
		return nil, err
	}
	// 20 raw bytes are an address; anything else is already text.
	dataProvider := string(dataProviderBytes)
	if len(dataProviderBytes) == 20 {
		dataProvider = fmt.Sprintf("0x%x", dataProviderBytes)
	}

	streamID, err := r.prefixed("stream ID")
	if err != nil {
		return nil, err
	}
	actionID, err := r.fixed(2, "action ID")
	if err != nil {
		return nil, err
	}

	argsBytes, err := r.prefixed("arguments")
	if err != nil {
		return nil, err
	}
	args := []any{}
	if len(argsBytes) > 0 {
		if args, err = DecodeActionArgs(argsBytes); err != nil {
			return nil, err
		}
	}

	resultBytes, err := r.prefixed("result")
	if err != nil {
		return nil, err
	}

	parsed := &types.ParsedAttestationPayload{
		Version:      header[0],
		Algorithm:    header[1],
		BlockHeight:  readUint64BE(height, 0),
		DataProvider: dataProvider,
		StreamID:     string(streamID),
		ActionID:     readUint16BE(actionID, 0),
		Arguments:    args,
	}
	if info, ok := types.LookupActionID(parsed.ActionID); ok && info.IsBinary {
		outcome, err := decodeABIBoolean(resultBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s result: %w", info.Name, err)
		}
		parsed.BooleanResult = &outcome
		return parsed, nil
	}

	if parsed.Result, err = decodeABIDatapoints(resultBytes); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return parsed, nil
}

// ParseBooleanResult returns the attested outcome of a binary action and its
// action id. payload is the canonical part, as for ParseAttestationPayload.
func ParseBooleanResult(payload []byte) (bool, uint16, error) {
	parsed, err := ParseAttestationPayload(payload)
	if err != nil {
		return false, 0, err
	}
	if parsed.BooleanResult == nil {
		return false, parsed.ActionID, fmt.Errorf("action %d is not a binary action", parsed.ActionID)
	}
	return *parsed.BooleanResult, parsed.ActionID, nil
}
