package shared

import "strings"

// PairKey is the storage key for something two users share. The order of the
// arguments does not matter.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// PairOther returns the member of the pair key that is not username. It
// reports false when username is not part of key.
func PairOther(key, username string) (string, bool) {
	a, b, ok := strings.Cut(key, "|")
	if !ok {
		return "", false
	}
	switch username {
	case a:
		return b, true
	case b:
		return a, true
	}
	return "", false
}
