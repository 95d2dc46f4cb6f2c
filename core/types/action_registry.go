package types

import "sort"

// ActionInfo describes an attestable action. ID is the 2-byte discriminator carried
// in attestation payloads; Name is the string carried in query components.
type ActionInfo struct {
	ID       uint16
	Name     string
	IsBinary bool
	// MarketType is the decoded market family for binary actions ("above", "below", ...).
	MarketType string
}

// Market types reported by DecodeMarketData.
const (
	MarketTypeAbove   = "above"
	MarketTypeBelow   = "below"
	MarketTypeBetween = "between"
	MarketTypeEquals  = "equals"
	MarketTypeUnknown = "unknown"
)

var actions = []ActionInfo{
	{ID: 1, Name: "get_record"},
	{ID: 2, Name: "get_index"},
	{ID: 3, Name: "get_change_over_time"},
	{ID: 4, Name: "get_last_record"},
	{ID: 5, Name: "get_first_record"},
	{ID: 6, Name: "price_above_threshold", IsBinary: true, MarketType: MarketTypeAbove},
	{ID: 7, Name: "price_below_threshold", IsBinary: true, MarketType: MarketTypeBelow},
	{ID: 8, Name: "value_in_range", IsBinary: true, MarketType: MarketTypeBetween},
	{ID: 9, Name: "value_equals", IsBinary: true, MarketType: MarketTypeEquals},
}

var (
	actionsByName = map[string]ActionInfo{}
	actionsByID   = map[uint16]ActionInfo{}
)

func init() {
	for _, a := range actions {
		actionsByName[a.Name] = a
		actionsByID[a.ID] = a
	}
}

// LookupAction finds an action by name.
func LookupAction(name string) (ActionInfo, bool) {
	a, ok := actionsByName[name]
	return a, ok
}

// LookupActionID finds an action by discriminator.
func LookupActionID(id uint16) (ActionInfo, bool) {
	a, ok := actionsByID[id]
	return a, ok
}

// BinaryActions lists the actions a market can settle on, ordered by ID.
func BinaryActions() []ActionInfo {
	out := make([]ActionInfo, 0, 4)
	for _, a := range actions {
		if a.IsBinary {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MarketTypeOf returns the market family for an action name, or "unknown".
func MarketTypeOf(name string) string {
	if a, ok := actionsByName[name]; ok && a.IsBinary {
		return a.MarketType
	}
	return MarketTypeUnknown
}
