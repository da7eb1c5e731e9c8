// Package symbol normalizes venue-native trading symbols into the
// canonical base-asset tag used to pair quotes across exchanges.
package symbol

import "strings"

// Normalize maps a venue-native symbol to its canonical base-asset tag.
// Rules are applied in order and the first match wins:
//  1. Uppercase the input.
//  2. If it contains "-", keep the substring before the first "-".
//  3. Else if it ends in "USDT" (and is longer than the suffix), strip it.
//  4. Else if it ends in "USD" (and is longer than the suffix), strip it.
//  5. Else if it contains "/", keep the substring before the first "/".
//  6. Else return as-is.
//
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	s := strings.ToUpper(raw)

	if i := strings.IndexByte(s, '-'); i >= 0 {
		return s[:i]
	}
	if strings.HasSuffix(s, "USDT") && len(s) > len("USDT") {
		return s[:len(s)-len("USDT")]
	}
	if strings.HasSuffix(s, "USD") && len(s) > len("USD") {
		return s[:len(s)-len("USD")]
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i]
	}
	return s
}
