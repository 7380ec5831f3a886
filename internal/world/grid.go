package world

// Overview coordinate conversion.
//
// A map occupying `length` overview cells starting at `min` is `size` tiles
// wide along the same axis. Each tile maps to the overview cell that holds
// its centre: (2c+1)/2 is the tile centre, scaled by length/size.

// TileToOverview returns the overview cell holding the centre of tile c.
// Formula: min + (2c+1)·length / (2·size)
func TileToOverview(min, length, size, c int32) int32 {
	if size <= 0 {
		return min
	}
	return min + int32(int64(2*c+1)*int64(length)/(2*int64(size)))
}

// Remap converts tile c on the old map's edge into the tile on the new map's
// edge whose centre lies at the same overview position.
//
// Formula: ((oldMin − newMin)·2·oldSize + (2c+1)·oldLen)·newSize / (2·newLen·oldSize)
// Integer division truncates toward zero. The result is not clamped.
func Remap(oldMin, newMin, oldSize, oldLen, newSize, newLen, c int32) int32 {
	if newLen <= 0 || oldSize <= 0 {
		return 0
	}
	num := (int64(oldMin-newMin)*2*int64(oldSize) + int64(2*c+1)*int64(oldLen)) * int64(newSize)
	den := 2 * int64(newLen) * int64(oldSize)
	return int32(num / den)
}

// clamp ограничивает v диапазоном [0, size-1].
func clamp(v, size int32) int32 {
	if v < 0 {
		return 0
	}
	if v >= size {
		return size - 1
	}
	return v
}
