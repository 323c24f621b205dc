package block

import "unicode/utf16"

// Hue derives the block colour from its type identifier. It reproduces the
// editor's historical colours: the 32-bit string hash over UTF-16 code units
// (h = 31*h + c), absolute value, modulo 360.
func Hue(typeID string) int {
	var h int32
	for _, c := range utf16.Encode([]rune(typeID)) {
		h = 31*h + int32(c)
	}
	if h < 0 {
		h = -h
	}
	return int(h % 360)
}
