package contractsapi

import (
	"bytes"
	"encoding/binary"
	"fmt"

	kwiltypes "github.com/trufnetwork/kwil-db/core/types"

	"github.com/trufnetwork/orderbook-go/core/types"
	"github.com/trufnetwork/orderbook-go/core/util"
)

// EncodeActionArgs encodes action arguments into the node's canonical bytes.
//
// Format: [arg_count:uint32][length:uint32][encoded_arg1][length:uint32][encoded_arg2]...
// All integers are little-endian; each encoded_arg is an EncodedValue in its
// MarshalBinary form. Anything kwiltypes.EncodeValue accepts may be passed.
func EncodeActionArgs(args []any) ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(args))); err != nil {
		return nil, fmt.Errorf("failed to write arg count: %w", err)
	}

	for i, arg := range args {
		encodedVal, err := kwiltypes.EncodeValue(arg)
		if err != nil {
			return nil, &types.EncodingError{Field: fmt.Sprintf("args[%d]", i), Err: err}
		}
		argBytes, err := encodedVal.MarshalBinary()
		if err != nil {
			return nil, &types.EncodingError{Field: fmt.Sprintf("args[%d]", i), Err: err}
		}

		if err := binary.Write(buf, binary.LittleEndian, uint32(len(argBytes))); err != nil {
			return nil, fmt.Errorf("failed to write arg %d length: %w", i, err)
		}
		buf.Write(argBytes)
	}

	return buf.Bytes(), nil
}

// DecodeActionArgs is the inverse of EncodeActionArgs. Pointer results are
// dereferenced, so strings, int64s, bools and byte slices come back as values.
func DecodeActionArgs(data []byte) ([]any, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("arguments data too short for arg count")
	}
	argCount := readUint32LE(data, 0)
	if argCount > maxArgs {
		return nil, fmt.Errorf("argument count %d exceeds maximum %d", argCount, maxArgs)
	}
	offset := 4

	args := make([]any, 0, argCount)
	for i := uint32(0); i < argCount; i++ {
		if offset+4 > len(data) {
			return nil, fmt.Errorf("arguments data too short for arg %d length", i)
		}
		argLen := int(readUint32LE(data, offset))
		offset += 4

		if offset+argLen > len(data) {
			return nil, fmt.Errorf("arguments data too short for arg %d bytes", i)
		}
		decoded, err := decodeEncodedValue(data[offset : offset+argLen])
		if err != nil {
			return nil, fmt.Errorf("failed to decode arg %d: %w", i, err)
		}
		args = append(args, decoded)
		offset += argLen
	}
	if offset != len(data) {
		return nil, fmt.Errorf("arguments data has %d trailing bytes", len(data)-offset)
	}
	return args, nil
}

// conditionArgs lays out a binary action's arguments in the order the node takes them:
// (data_provider, stream_id, timestamp, thresholds..., frozen_at).
func conditionArgs(cond types.MarketCondition) ([]any, error) {
	target := cond.Target()
	args := []any{target.DataProvider, target.StreamID, target.Timestamp}
	for _, th := range cond.Thresholds() {
		dec, err := kwiltypes.ParseDecimalExplicit(th, 36, 18)
		if err != nil {
			return nil, &types.EncodingError{Field: "threshold", Err: err}
		}
		args = append(args, dec)
	}
	args = append(args, util.TransformOrNil(target.FrozenAt, func(v int64) any { return v }))
	return args, nil
}
