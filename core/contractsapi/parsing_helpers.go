package contractsapi

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
)

// ═══════════════════════════════════════════════════════════════
// GATEWAY COLUMN PARSING
// The gateway serializes rows as JSON, so the same column may arrive as a
// native value, a JSON number or a string depending on its SQL type.
// ═══════════════════════════════════════════════════════════════

// extractIntColumn accepts native ints, JSON numbers and decimal strings.
func extractIntColumn(val any, target *int, colIndex int, colName string) error {
	switch v := val.(type) {
	case int:
		*target = v
	case int64:
		*target = int(v)
	case float64:
		if v != math.Trunc(v) {
			return fmt.Errorf("invalid %s (column %d): %v is not an integer", colName, colIndex, v)
		}
		*target = int(v)
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s (column %d): cannot parse string to int: %w", colName, colIndex, err)
		}
		*target = parsed
	default:
		return fmt.Errorf("invalid %s type (column %d): %T", colName, colIndex, val)
	}
	return nil
}

// extractInt64Column is extractIntColumn for INT8, which the gateway sends as
// a string.
func extractInt64Column(value any, dest *int64, colIndex int, colName string) error {
	switch v := value.(type) {
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("column %d: failed to parse %s as int64 (value=%q): %w", colIndex, colName, v, err)
		}
		*dest = n
	case float64:
		if v != math.Trunc(v) {
			return fmt.Errorf("column %d: %s value %v is not an integer", colIndex, colName, v)
		}
		*dest = int64(v)
	case int:
		*dest = int64(v)
	case int64:
		*dest = v
	default:
		return fmt.Errorf("column %d: expected %s to be string or number, got %T", colIndex, colName, value)
	}
	return nil
}

func extractBoolColumn(val any, target *bool, colIndex int, colName string) error {
	switch v := val.(type) {
	case bool:
		*target = v
	case string:
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s (column %d): cannot parse string to bool: %w", colName, colIndex, err)
		}
		*target = parsed
	default:
		return fmt.Errorf("invalid %s type (column %d): %T", colName, colIndex, val)
	}
	return nil
}

// extractStringColumn also accepts numbers, since some gateways render
// NUMERIC as JSON numbers.
func extractStringColumn(val any, target *string, colIndex int, colName string) error {
	switch v := val.(type) {
	case string:
		*target = v
	case float64:
		*target = strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		*target = strconv.FormatInt(v, 10)
	case int:
		*target = strconv.Itoa(v)
	default:
		return fmt.Errorf("invalid %s type (column %d): expected string, got %T", colName, colIndex, val)
	}
	return nil
}

// extractBytesColumn decodes BYTEA, sent as base64 except for wallets which
// come as 0x hex.
func extractBytesColumn(value any, dest *[]byte, colIndex int, colName string) error {
	if value == nil {
		*dest = nil
		return nil
	}
	if b, ok := value.([]byte); ok {
		*dest = b
		return nil
	}

	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("column %d: expected %s to be string, got %T", colIndex, colName, value)
	}
	if len(str) == 0 {
		*dest = nil
		return nil
	}

	// 0x prefix: hex first, then base64 of the remainder.
	if len(str) >= 2 && str[:2] == "0x" {
		hexData := str[2:]
		if decoded, err := hex.DecodeString(hexData); err == nil {
			*dest = decoded
			return nil
		}
		str = hexData
	}

	var lastErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		decoded, err := enc.DecodeString(str)
		if err == nil {
			*dest = decoded
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("column %d: failed to decode %s as hex or base64 (len=%d): %w", colIndex, colName, len(str), lastErr)
}

func nullableBool(val any, colIndex int, colName string) (*bool, error) {
	if val == nil {
		return nil, nil
	}
	var b bool
	if err := extractBoolColumn(val, &b, colIndex, colName); err != nil {
		return nil, err
	}
	return &b, nil
}

func nullableInt64(val any, colIndex int, colName string) (*int64, error) {
	if val == nil {
		return nil, nil
	}
	var n int64
	if err := extractInt64Column(val, &n, colIndex, colName); err != nil {
		return nil, err
	}
	return &n, nil
}

func nullableInt(val any, colIndex int, colName string) (*int, error) {
	if val == nil {
		return nil, nil
	}
	var n int
	if err := extractIntColumn(val, &n, colIndex, colName); err != nil {
		return nil, err
	}
	return &n, nil
}

// expectColumns guards positional access into a row.
func expectColumns(row []any, n int, action string) error {
	if len(row) < n {
		return fmt.Errorf("invalid %s row: expected %d columns, got %d", action, n, len(row))
	}
	return nil
}

// rowScanner reads a row left to right. The first failure sticks and every
// later read is skipped.
type rowScanner struct {
	row []any
	col int
	err error
}

func newRowScanner(row []any, columns int, what string) *rowScanner {
	return &rowScanner{row: row, err: expectColumns(row, columns, what)}
}

func (s *rowScanner) next() (any, int, bool) {
	if s.err != nil {
		return nil, s.col, false
	}
	if s.col >= len(s.row) {
		s.err = fmt.Errorf("row ended at column %d", s.col)
		return nil, s.col, false
	}
	v, i := s.row[s.col], s.col
	s.col++
	return v, i, true
}

func (s *rowScanner) intCol(name string, dest *int) {
	if v, i, ok := s.next(); ok {
		s.err = extractIntColumn(v, dest, i, name)
	}
}

func (s *rowScanner) int64Col(name string, dest *int64) {
	if v, i, ok := s.next(); ok {
		s.err = extractInt64Column(v, dest, i, name)
	}
}

func (s *rowScanner) boolCol(name string, dest *bool) {
	if v, i, ok := s.next(); ok {
		s.err = extractBoolColumn(v, dest, i, name)
	}
}

func (s *rowScanner) stringCol(name string, dest *string) {
	if v, i, ok := s.next(); ok {
		s.err = extractStringColumn(v, dest, i, name)
	}
}

func (s *rowScanner) bytesCol(name string, dest *[]byte) {
	if v, i, ok := s.next(); ok {
		s.err = extractBytesColumn(v, dest, i, name)
	}
}

// optString leaves dest untouched for NULL.
func (s *rowScanner) optString(name string, dest *string) {
	if v, i, ok := s.next(); ok && v != nil {
		s.err = extractStringColumn(v, dest, i, name)
	}
}

func (s *rowScanner) optBool(name string, dest **bool) {
	if v, i, ok := s.next(); ok {
		*dest, s.err = nullableBool(v, i, name)
	}
}

func (s *rowScanner) optInt(name string, dest **int) {
	if v, i, ok := s.next(); ok {
		*dest, s.err = nullableInt(v, i, name)
	}
}

func (s *rowScanner) optInt64(name string, dest **int64) {
	if v, i, ok := s.next(); ok {
		*dest, s.err = nullableInt64(v, i, name)
	}
}

func (s *rowScanner) Err() error { return s.err }
