package imaging

import (
	"image"

	"github.com/corona10/goimagehash"
)

// Duplicate reports whether a and b are perceptually the same photo.
// Images are duplicates when their difference hashes are at most threshold bits apart;
// a negative threshold disables detection. Hashing failures report false.
func Duplicate(a, b image.Image, threshold int) bool {
	if threshold < 0 || a == nil || b == nil {
		return false
	}

	ha, err := goimagehash.DifferenceHash(a)
	if err != nil {
		return false
	}
	hb, err := goimagehash.DifferenceHash(b)
	if err != nil {
		return false
	}

	dist, err := ha.Distance(hb)
	if err != nil {
		return false
	}
	return dist <= threshold
}
