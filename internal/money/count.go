package money

// Count floors a quantity-like input toward negative infinity and clamps it
// to minimum. Absent input yields def.
func Count(v Value, def, minimum int64) int64 {
	if !v.ok {
		return def
	}
	n := v.d.Floor().IntPart()
	if n < minimum {
		return minimum
	}
	return n
}

// CountOrNil is Count for optional fields with no default.
func CountOrNil(v Value, minimum int64) *int64 {
	if !v.ok {
		return nil
	}
	n := Count(v, 0, minimum)
	return &n
}
