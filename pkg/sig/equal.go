package sig

import (
	"crypto/subtle"
)

// Equal reports whether two signatures match without leaking, through
// timing, the position of the first differing byte. When the lengths
// differ a full-width comparison over the supplied value still runs, so
// a length mismatch is not distinguishable from a same-length mismatch
// by being faster.
func Equal(expected, supplied []byte) bool {
	if len(expected) != len(supplied) {
		subtle.ConstantTimeCompare(supplied, supplied)
		return false
	}
	return subtle.ConstantTimeCompare(expected, supplied) == 1
}
