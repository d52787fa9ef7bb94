// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// ParseID parses a decimal, unsigned row identifier as it appears in a URL
// path segment. Signs, whitespace, and values that overflow uint are rejected.
//
// Example:
//
//	id, ok := utils.ParseID("42")  // 42, true
//	_, ok = utils.ParseID("-1")    // false
//	_, ok = utils.ParseID("abc")   // false
func ParseID(s string) (uint, bool) {
	if s == "" || s[0] == '+' {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, strconv.IntSize)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}
