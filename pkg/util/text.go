// pkg/util/text.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"strconv"
	"strings"
	"unicode"
)

// Atof is a utility for parsing floating point values that trims
// whitespace before handing the string to strconv.
func Atof(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// StopShouting turns text of the form "UNITED STATES AIR FORCE" to
// "United States Air Force".
func StopShouting(orig string) string {
	var s strings.Builder
	wsLast := true
	for _, ch := range orig {
		if unicode.IsSpace(ch) {
			wsLast = true
		} else if unicode.IsLetter(ch) {
			if wsLast {
				// leave it alone
				wsLast = false
			} else {
				ch = unicode.ToLower(ch)
			}
		}

		// Straighten out the quotes
		if ch == '“' || ch == '”' {
			ch = '"'
		}

		s.WriteRune(ch)
	}
	return s.String()
}
