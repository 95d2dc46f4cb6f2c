package util

// TransformOrNil maps an optional value to an action argument. A nil pointer
// becomes a NULL argument, as list_markets expects for an absent filter or page.
//
//	args := []any{util.TransformOrNil(input.Limit, func(v int) any { return v })}
func TransformOrNil[T any](value *T, transform func(T) any) any {
	if value == nil {
		return nil
	}
	return transform(*value)
}
