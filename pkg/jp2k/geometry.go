package jp2k

// EffectiveDimension returns ceil(u / 2^d), the size of a dimension u after
// discarding d resolution levels.
func EffectiveDimension(u, d uint32) uint32 {
	if d >= 32 {
		if u == 0 {
			return 0
		}
		return 1
	}
	div := uint32(1) << d
	quot := u / div
	if u%div > 0 {
		return quot + 1
	}
	return quot
}
