package core

import "strconv"

// Ref is an entity reference as supplied by a caller: either a numeric
// surrogate id or a natural-key string. Resolution always attempts the
// surrogate id first when the reference is all digits, and falls back to the
// natural key; this is the single dual-mode lookup used across the system.
type Ref string

// Numeric reports the surrogate id held by the reference, if any. A reference
// is only considered numeric when it is non-empty and all digits.
func (r Ref) Numeric() (int, bool) {
	if r == "" {
		return 0, false
	}
	for _, c := range r {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(string(r))
	if err != nil {
		return 0, false
	}
	return id, true
}

func (r Ref) String() string { return string(r) }
