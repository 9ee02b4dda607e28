// Package naming converts PascalCase identifiers into snake case column names.
package naming

import "strings"

// ScreamingFromPascal returns the upper snake case form of input,
// e.g. HTTPStatus becomes HTTP_STATUS. Case mapping is per rune, so a
// character without a single-rune upper case form (ß) is kept.
func ScreamingFromPascal(input string) string {
	return strings.ToUpper(fromPascalCore(input))
}

// FromPascal returns the lower snake case form of input.
func FromPascal(input string) string {
	return strings.ToLower(fromPascalCore(input))
}

// fromPascalCore inserts an underscore before every ASCII capital that starts
// a word. A capital starts a word when it follows a non-capital, or when it
// ends a run of capitals and a lowercase letter comes next. The first
// character never gets one.
func fromPascalCore(input string) string {
	var b strings.Builder
	b.Grow(len(input) + 4)
	for i := 0; i < len(input); i++ {
		c := input[i]
		if i > 0 && isUpper(c) {
			prev := input[i-1]
			if !isUpper(prev) || (i+1 < len(input) && isLower(input[i+1])) {
				b.WriteByte('_')
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isUpper(c byte) bool { return 'A' <= c && c <= 'Z' }
func isLower(c byte) bool { return 'a' <= c && c <= 'z' }
